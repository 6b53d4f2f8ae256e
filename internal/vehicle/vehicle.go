package vehicle

import (
	"fmt"
	"math"

	"github.com/san-kum/tvcsim/internal/dynamo"
)

// State layout. Orientation is the body-to-world quaternion stored w-first;
// angular velocity is expressed in the body frame.
const (
	PosX = iota
	PosY
	PosZ
	VelX
	VelY
	VelZ
	QuatW
	QuatX
	QuatY
	QuatZ
	AngX
	AngY
	AngZ
	Mass

	StateSize = 14
)

// Control layout: [throttle, gimbalX, gimbalY], gimbal angles in radians.
const (
	CtrlThrottle = iota
	CtrlGimbalX
	CtrlGimbalY

	ControlSize = 3
)

const (
	// MaxGimbal is the deflection limit per gimbal axis.
	MaxGimbal = math.Pi / 3 // 60 degrees

	// QuatDriftTolerance is the allowed deviation of |q| from 1 before the
	// orientation is renormalized after a step.
	QuatDriftTolerance = 1e-6
)

// Vehicle is a single rigid body under thrust-vector control: a gimballed
// engine mounted below the center of mass, gravity, and fuel depletion.
// No aerodynamic forces are modeled.
type Vehicle struct {
	MaxThrust   float64 // N at full throttle
	InitialMass float64 // kg, wet
	DryMass     float64 // kg, depletion and staging clamp here
	FuelRate    float64 // kg/s at full throttle

	EngineOffset float64 // m, engine mount below center of mass
	Inertia      float64 // kg*m^2, scalar approximation
	Gravity      float64 // m/s^2

	// MinGimbalThrottle is the throttle floor granting gimbal authority:
	// with non-zero deflection the thrust magnitude is floored here, while
	// the torque still scales with the commanded throttle.
	MinGimbalThrottle float64

	StageDropMass float64 // kg shed by one staging event
}

func New() *Vehicle {
	return &Vehicle{
		MaxThrust:         1000.0,
		InitialMass:       50.0,
		DryMass:           1.0,
		FuelRate:          2.0,
		EngineOffset:      1.0,
		Inertia:           10.0,
		Gravity:           9.81,
		MinGimbalThrottle: 0.2,
		StageDropMass:     10.0,
	}
}

func (v *Vehicle) StateDim() int   { return StateSize }
func (v *Vehicle) ControlDim() int { return ControlSize }

// InitialState returns the launch state: at the origin, at rest, identity
// orientation, full mass.
func (v *Vehicle) InitialState() dynamo.State {
	s := make(dynamo.State, StateSize)
	s[QuatW] = 1.0
	s[Mass] = v.InitialMass
	return s
}

// Derive computes the full state derivative. Pure function of (x, u): the
// same inputs always yield bit-identical output.
func (v *Vehicle) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	throttle := clamp(u[CtrlThrottle], 0, 1)
	gx := clamp(u[CtrlGimbalX], -MaxGimbal, MaxGimbal)
	gy := clamp(u[CtrlGimbalY], -MaxGimbal, MaxGimbal)

	m := math.Max(x[Mass], v.DryMass)

	q := [4]float64{x[QuatW], x[QuatX], x[QuatY], x[QuatZ]}
	if n := quatNorm(q); n > 0 {
		q[0] /= n
		q[1] /= n
		q[2] /= n
		q[3] /= n
	} else {
		q = [4]float64{1, 0, 0, 0}
	}

	// Thrust direction: body +z rotated by gimbalX about body x, then
	// gimbalY about body y.
	sx, cx := math.Sincos(gx)
	sy, cy := math.Sincos(gy)
	dirBody := [3]float64{sy * cx, -sx, cx * cy}

	// Non-zero deflection floors the thrust magnitude so the gimbal keeps
	// authority at low commanded throttle.
	effThrottle := throttle
	if (gx != 0 || gy != 0) && effThrottle < v.MinGimbalThrottle {
		effThrottle = v.MinGimbalThrottle
	}
	thrust := effThrottle * v.MaxThrust

	dirWorld := quatRotate(q, dirBody)

	fx := thrust * dirWorld[0]
	fy := thrust * dirWorld[1]
	fz := thrust*dirWorld[2] - v.Gravity*m

	// Torque from thrust applied at the engine mount r = (0, 0, -offset),
	// scaled by the commanded (not floored) throttle: near-zero throttle
	// cannot produce meaningful attitude control.
	torqueThrust := throttle * v.MaxThrust
	tauX := v.EngineOffset * torqueThrust * dirBody[1]
	tauY := -v.EngineOffset * torqueThrust * dirBody[0]

	wx, wy, wz := x[AngX], x[AngY], x[AngZ]

	// Quaternion kinematics: dq = 0.5 * q ⊗ (0, ω), ω in the body frame.
	dq := quatMul(q, [4]float64{0, wx, wy, wz})

	dm := 0.0
	if x[Mass] > v.DryMass {
		dm = -v.FuelRate * throttle
	}

	return dynamo.State{
		x[VelX], x[VelY], x[VelZ],
		fx / m, fy / m, fz / m,
		0.5 * dq[0], 0.5 * dq[1], 0.5 * dq[2], 0.5 * dq[3],
		tauX / v.Inertia, tauY / v.Inertia, 0,
		dm,
	}
}

// Renormalize restores the unit-quaternion invariant in place when numerical
// drift exceeds the tolerance. It reports an error for a degenerate
// orientation that cannot be normalized.
func (v *Vehicle) Renormalize(x dynamo.State) error {
	q := [4]float64{x[QuatW], x[QuatX], x[QuatY], x[QuatZ]}
	n := quatNorm(q)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return dynamo.ErrInvalidState
	}
	if math.Abs(n-1) > QuatDriftTolerance {
		x[QuatW] /= n
		x[QuatX] /= n
		x[QuatY] /= n
		x[QuatZ] /= n
	}
	return nil
}

// ClampMass enforces the dry-mass floor in place.
func (v *Vehicle) ClampMass(x dynamo.State) {
	if x[Mass] < v.DryMass {
		x[Mass] = v.DryMass
	}
}

// Stage applies one discrete staging event: an instantaneous mass drop,
// clamped at the dry-mass floor.
func (v *Vehicle) Stage(x dynamo.State) {
	x[Mass] = math.Max(v.DryMass, x[Mass]-v.StageDropMass)
}

// Orientation extracts the attitude quaternion (w-first).
func Orientation(x dynamo.State) [4]float64 {
	return [4]float64{x[QuatW], x[QuatX], x[QuatY], x[QuatZ]}
}

func Altitude(x dynamo.State) float64 {
	return x[PosZ]
}

func Speed(x dynamo.State) float64 {
	return math.Sqrt(x[VelX]*x[VelX] + x[VelY]*x[VelY] + x[VelZ]*x[VelZ])
}

func (v *Vehicle) GetParams() map[string]float64 {
	return map[string]float64{
		"max_thrust":          v.MaxThrust,
		"initial_mass":        v.InitialMass,
		"dry_mass":            v.DryMass,
		"fuel_rate":           v.FuelRate,
		"engine_offset":       v.EngineOffset,
		"inertia":             v.Inertia,
		"gravity":             v.Gravity,
		"min_gimbal_throttle": v.MinGimbalThrottle,
		"stage_drop_mass":     v.StageDropMass,
	}
}

func (v *Vehicle) SetParam(name string, value float64) error {
	switch name {
	case "max_thrust":
		v.MaxThrust = value
	case "initial_mass":
		v.InitialMass = value
	case "dry_mass":
		v.DryMass = value
	case "fuel_rate":
		v.FuelRate = value
	case "engine_offset":
		v.EngineOffset = value
	case "inertia":
		v.Inertia = value
	case "gravity":
		v.Gravity = value
	case "min_gimbal_throttle":
		v.MinGimbalThrottle = value
	case "stage_drop_mass":
		v.StageDropMass = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
