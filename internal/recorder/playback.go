package recorder

import "fmt"

// Playback replays a recorded flight entry by entry, in order, at the
// original relative time spacing. It never re-runs the integrator: replay is
// read-only.
type Playback struct {
	entries []Entry
	idx     int
}

func NewPlayback(entries []Entry) *Playback {
	return &Playback{entries: entries}
}

// Next returns the next entry and advances the play head. ok is false once
// the log is exhausted.
func (p *Playback) Next() (Entry, bool) {
	if p.idx >= len(p.entries) {
		return Entry{}, false
	}
	e := p.entries[p.idx]
	p.idx++
	return e, true
}

// Seek moves the play head to entry i; the next call to Next returns it.
func (p *Playback) Seek(i int) error {
	if i < 0 || i > len(p.entries) {
		return fmt.Errorf("seek index %d out of range [0,%d]", i, len(p.entries))
	}
	p.idx = i
	return nil
}

func (p *Playback) Rewind() {
	p.idx = 0
}

func (p *Playback) Index() int {
	return p.idx
}

func (p *Playback) Len() int {
	return len(p.entries)
}

func (p *Playback) Done() bool {
	return p.idx >= len(p.entries)
}
