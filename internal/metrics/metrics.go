// Package metrics provides per-step flight statistics. Each metric
// implements dynamo.Metric and is observed once per committed step.
package metrics

import (
	"math"

	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

// Apogee tracks the maximum altitude reached.
type Apogee struct {
	max float64
}

func NewApogee() *Apogee { return &Apogee{} }

func (a *Apogee) Name() string { return "apogee" }

func (a *Apogee) Observe(x dynamo.State, u dynamo.Control, t float64) {
	a.max = math.Max(a.max, vehicle.Altitude(x))
}

func (a *Apogee) Value() float64 { return a.max }

func (a *Apogee) Reset() { a.max = 0 }

// MaxSpeed tracks the peak velocity magnitude.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.max = math.Max(m.max, vehicle.Speed(x))
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

// PathLength accumulates the distance flown, summed segment by segment.
type PathLength struct {
	prev   [3]float64
	seeded bool
	total  float64
}

func NewPathLength() *PathLength { return &PathLength{} }

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(x dynamo.State, u dynamo.Control, t float64) {
	pos := [3]float64{x[vehicle.PosX], x[vehicle.PosY], x[vehicle.PosZ]}
	if p.seeded {
		dx := pos[0] - p.prev[0]
		dy := pos[1] - p.prev[1]
		dz := pos[2] - p.prev[2]
		p.total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	p.prev = pos
	p.seeded = true
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() {
	p.total = 0
	p.seeded = false
}

// MassSpent tracks total mass lost since the first observation, covering both
// fuel depletion and staging drops.
type MassSpent struct {
	initial float64
	current float64
	seeded  bool
}

func NewMassSpent() *MassSpent { return &MassSpent{} }

func (m *MassSpent) Name() string { return "mass_spent" }

func (m *MassSpent) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if !m.seeded {
		m.initial = x[vehicle.Mass]
		m.seeded = true
	}
	m.current = x[vehicle.Mass]
}

func (m *MassSpent) Value() float64 {
	if !m.seeded {
		return 0
	}
	return m.initial - m.current
}

func (m *MassSpent) Reset() {
	m.initial = 0
	m.current = 0
	m.seeded = false
}
