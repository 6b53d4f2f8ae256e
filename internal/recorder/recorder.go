// Package recorder keeps the append-only flight log: one timestamped state
// snapshot per committed integration step, plus discrete stage events.
// Entries are never reordered or mutated after append, which is what makes a
// recorded flight replayable.
package recorder

import (
	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

// Entry is one recorded snapshot. State is a private clone; callers must not
// mutate it.
type Entry struct {
	T     float64
	State dynamo.State
}

// StageEvent marks a discrete mass-drop at a point along the flight path.
type StageEvent struct {
	T        float64
	Position [3]float64
}

type Recorder struct {
	entries []Entry
	stages  []StageEvent
}

func New() *Recorder {
	return &Recorder{
		entries: make([]Entry, 0, 1024),
	}
}

// Append records a snapshot. The state is cloned so later integration steps
// cannot alias into the log.
func (r *Recorder) Append(t float64, state dynamo.State) {
	r.entries = append(r.entries, Entry{T: t, State: state.Clone()})
}

func (r *Recorder) Len() int {
	return len(r.entries)
}

func (r *Recorder) At(i int) Entry {
	return r.entries[i]
}

func (r *Recorder) Last() (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// History returns the log-so-far. The slice is a copy and safe to read while
// the simulation keeps appending; the entry states are immutable by contract.
func (r *Recorder) History() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) MarkStage(t float64, state dynamo.State) {
	r.stages = append(r.stages, StageEvent{
		T:        t,
		Position: [3]float64{state[vehicle.PosX], state[vehicle.PosY], state[vehicle.PosZ]},
	})
}

func (r *Recorder) StageEvents() []StageEvent {
	out := make([]StageEvent, len(r.stages))
	copy(out, r.stages)
	return out
}

func (r *Recorder) Clear() {
	r.entries = r.entries[:0]
	r.stages = r.stages[:0]
}
