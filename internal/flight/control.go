package flight

import (
	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

// ControlInput holds the commanded throttle and gimbal deflection. Setters
// clamp to the valid ranges; the gimbal lock while running is enforced by the
// Controller, not here.
type ControlInput struct {
	throttle float64
	gimbalX  float64 // radians
	gimbalY  float64 // radians
}

func (c *ControlInput) SetThrottle(v float64) {
	c.throttle = clamp(v, 0, 1)
}

func (c *ControlInput) SetGimbal(gx, gy float64) {
	c.gimbalX = clamp(gx, -vehicle.MaxGimbal, vehicle.MaxGimbal)
	c.gimbalY = clamp(gy, -vehicle.MaxGimbal, vehicle.MaxGimbal)
}

func (c *ControlInput) Throttle() float64 { return c.throttle }
func (c *ControlInput) GimbalX() float64  { return c.gimbalX }
func (c *ControlInput) GimbalY() float64  { return c.gimbalY }

// Vector packs the input in the layout the vehicle model expects.
func (c *ControlInput) Vector() dynamo.Control {
	return dynamo.Control{c.throttle, c.gimbalX, c.gimbalY}
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
