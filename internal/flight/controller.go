// Package flight owns the simulation state machine: one state vector, one
// control input, one flight recorder, advanced strictly one fixed timestep at
// a time. All calls are synchronous; the engine never sleeps and never reads
// the wall clock, so a flight is reproducible from its inputs alone.
package flight

import (
	"fmt"

	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/metrics"
	"github.com/san-kum/tvcsim/internal/recorder"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Contact describes a ground-plane crossing. Speed is the velocity magnitude
// at impact, before the clamp.
type Contact struct {
	T     float64
	Speed float64
	Hard  bool
}

// Stats are derived flight statistics, updated incrementally per step.
type Stats struct {
	MaxAltitude float64
	MaxSpeed    float64
	Distance    float64
	MassSpent   float64
	Elapsed     float64
	Steps       int
}

// Snapshot is a read-only view of the simulation for rendering and export.
// State is a copy; mutating it has no effect on the engine.
type Snapshot struct {
	T           float64
	State       dynamo.State
	Phase       Phase
	Stats       Stats
	Contact     *Contact
	PauseReason string
	Throttle    float64
	GimbalX     float64
	GimbalY     float64
}

type Options struct {
	Dt               float64 // fixed timestep, seconds
	HardLandingSpeed float64 // m/s; impacts above this force a pause
}

func DefaultOptions() Options {
	return Options{
		Dt:               0.01,
		HardLandingSpeed: 5.0,
	}
}

// Controller is the sole mutator of the state vector. It is not safe for
// concurrent use; drive it from a single goroutine and hand Snapshots to
// renderers.
type Controller struct {
	veh   *vehicle.Vehicle
	integ dynamo.Integrator
	opts  Options

	control ControlInput
	state   dynamo.State
	rec     *recorder.Recorder

	phase        Phase
	gimbalLocked bool
	t            float64
	steps        int
	lastContact  *Contact
	pauseReason  string

	apogee    *metrics.Apogee
	maxSpeed  *metrics.MaxSpeed
	path      *metrics.PathLength
	massSpent *metrics.MassSpent
	observers []dynamo.Metric
}

func New(veh *vehicle.Vehicle, integ dynamo.Integrator, opts Options) *Controller {
	c := &Controller{
		veh:       veh,
		integ:     integ,
		opts:      opts,
		rec:       recorder.New(),
		apogee:    metrics.NewApogee(),
		maxSpeed:  metrics.NewMaxSpeed(),
		path:      metrics.NewPathLength(),
		massSpent: metrics.NewMassSpent(),
	}
	c.observers = []dynamo.Metric{c.apogee, c.maxSpeed, c.path, c.massSpent}
	c.control.SetThrottle(1.0)
	c.resetState()
	return c
}

func (c *Controller) resetState() {
	c.state = c.veh.InitialState()
	c.t = 0
	c.steps = 0
	c.lastContact = nil
	c.pauseReason = ""
	c.rec.Clear()
	for _, m := range c.observers {
		m.Reset()
	}
	// seed path tracking and mass baseline with the launch state
	for _, m := range c.observers {
		m.Observe(c.state, c.control.Vector(), 0)
	}
}

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) Dt() float64 { return c.opts.Dt }

// Start transitions Idle or Paused to Running and locks the gimbal until the
// next Reset.
func (c *Controller) Start() error {
	if c.phase == PhaseRunning {
		return fmt.Errorf("start while running: %w", ErrInvalidOperation)
	}
	c.phase = PhaseRunning
	c.gimbalLocked = true
	c.pauseReason = ""
	return nil
}

// Pause transitions Running to Paused.
func (c *Controller) Pause() error {
	if c.phase != PhaseRunning {
		return fmt.Errorf("pause while %s: %w", c.phase, ErrInvalidOperation)
	}
	c.phase = PhasePaused
	c.pauseReason = "paused"
	return nil
}

// Step advances exactly one timestep. Permitted while Idle or Paused; while
// Running the fixed tick drives stepping instead.
func (c *Controller) Step() error {
	if c.phase == PhaseRunning {
		return fmt.Errorf("manual step while running: %w", ErrInvalidOperation)
	}
	return c.advance()
}

// Tick advances one timestep if Running, and is a no-op otherwise. External
// drivers call this at their own cadence (the TUI at ~60 Hz).
func (c *Controller) Tick() error {
	if c.phase != PhaseRunning {
		return nil
	}
	return c.advance()
}

// Reset returns to Idle: initial state, empty recorder, cleared statistics,
// gimbal unlocked. Legal in every phase.
func (c *Controller) Reset() {
	c.phase = PhaseIdle
	c.gimbalLocked = false
	c.resetState()
}

// Stage sheds the configured stage mass immediately. Legal in every phase and
// does not change the run phase.
func (c *Controller) Stage() {
	c.veh.Stage(c.state)
	c.rec.MarkStage(c.t, c.state)
}

func (c *Controller) SetThrottle(v float64) {
	c.control.SetThrottle(v)
}

// SetGimbal adjusts the gimbal deflection (radians). Rejected between Start
// and Reset; the stored values are left unchanged.
func (c *Controller) SetGimbal(gx, gy float64) error {
	if c.gimbalLocked {
		return ErrGimbalLocked
	}
	c.control.SetGimbal(gx, gy)
	return nil
}

// advance performs one integration step. The step either fully commits
// (state advanced, entry appended, stats updated) or fully rejects with the
// state and log untouched; a rejected step forces a pause.
func (c *Controller) advance() error {
	u := c.control.Vector()

	next := c.integ.Step(c.veh, c.state, u, c.t, c.opts.Dt)

	c.veh.ClampMass(next)
	if !next.IsValid() {
		c.phase = PhasePaused
		c.pauseReason = "numerical degeneracy: non-finite state"
		return &dynamo.StepError{Step: c.steps, Time: c.t, Wrapped: dynamo.ErrInvalidState}
	}
	if err := c.veh.Renormalize(next); err != nil {
		c.phase = PhasePaused
		c.pauseReason = "numerical degeneracy: degenerate orientation"
		return &dynamo.StepError{Step: c.steps, Time: c.t, Wrapped: err}
	}

	var contact *Contact
	if next[vehicle.PosZ] <= 0 {
		speed := vehicle.Speed(next)
		next[vehicle.PosZ] = 0
		if next[vehicle.VelZ] < 0 {
			next[vehicle.VelZ] = 0
		}
		contact = &Contact{
			T:     c.t + c.opts.Dt,
			Speed: speed,
			Hard:  speed > c.opts.HardLandingSpeed,
		}
	}

	c.state = next
	c.t += c.opts.Dt
	c.steps++
	c.rec.Append(c.t, c.state)
	for _, m := range c.observers {
		m.Observe(c.state, u, c.t)
	}

	if contact != nil {
		c.lastContact = contact
		if contact.Hard {
			c.phase = PhasePaused
			c.pauseReason = fmt.Sprintf("hard landing at %.1f m/s", contact.Speed)
		}
	}

	return nil
}

// Snapshot returns the current state plus derived statistics.
func (c *Controller) Snapshot() Snapshot {
	var contact *Contact
	if c.lastContact != nil {
		cc := *c.lastContact
		contact = &cc
	}
	return Snapshot{
		T:     c.t,
		State: c.state.Clone(),
		Phase: c.phase,
		Stats: Stats{
			MaxAltitude: c.apogee.Value(),
			MaxSpeed:    c.maxSpeed.Value(),
			Distance:    c.path.Value(),
			MassSpent:   c.massSpent.Value(),
			Elapsed:     c.t,
			Steps:       c.steps,
		},
		Contact:     contact,
		PauseReason: c.pauseReason,
		Throttle:    c.control.Throttle(),
		GimbalX:     c.control.GimbalX(),
		GimbalY:     c.control.GimbalY(),
	}
}

// History returns the recorded flight log so far.
func (c *Controller) History() []recorder.Entry {
	return c.rec.History()
}

func (c *Controller) StageEvents() []recorder.StageEvent {
	return c.rec.StageEvents()
}

// ExportCSV writes the flight log to path. An IO failure leaves the
// simulation untouched.
func (c *Controller) ExportCSV(path string) error {
	return c.rec.ExportFile(path)
}
