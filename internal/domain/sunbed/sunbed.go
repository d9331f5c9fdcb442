package sunbed

import (
	"fmt"
	"sync/atomic"
)

// DefaultBaseID is the id given to the first bed of a new sequence.
const DefaultBaseID = 1

// SunBed is a single bed that can be booked or free.
type SunBed struct {
	// id identifies the bed and never changes after creation.
	id int
	// booked indicates whether the bed is currently hired.
	booked bool
}

// Restore rebuilds a bed that was previously persisted.
func Restore(id int, booked bool) *SunBed {
	return &SunBed{
		id:     id,
		booked: booked,
	}
}

// ID returns the bed identifier.
func (b *SunBed) ID() int {
	return b.id
}

// IsBooked reports whether the bed is occupied.
func (b *SunBed) IsBooked() bool {
	return b.booked
}

// SetBooked sets the occupancy flag to the given value.
func (b *SunBed) SetBooked(booked bool) {
	b.booked = booked
}

// Toggle flips the bed between free and booked.
func (b *SunBed) Toggle() {
	b.booked = !b.booked
}

// String returns a human-readable description of the bed.
func (b *SunBed) String() string {
	if b.booked {
		return fmt.Sprintf("Sun bed #%d is booked right now.", b.id)
	}

	return fmt.Sprintf("Sun bed #%d is not booked right now.", b.id)
}

// Clone returns a copy of the bed to avoid leaking internal references.
func (b *SunBed) Clone() *SunBed {
	if b == nil {
		return nil
	}

	cloned := *b

	return &cloned
}

// Sequence hands out strictly increasing bed ids.
// It is safe for concurrent use.
type Sequence struct {
	// last is the most recently issued (or observed) id.
	last atomic.Int64
}

// NewSequence creates a sequence whose first issued id is base.
func NewSequence(base int) *Sequence {
	s := new(Sequence)
	s.last.Store(int64(base) - 1)

	return s
}

// Next creates a free bed with a fresh id.
func (s *Sequence) Next() *SunBed {
	return &SunBed{
		id:     int(s.last.Add(1)),
		booked: false,
	}
}

// Observe makes sure ids issued later are greater than id.
// Lower ids are ignored, so the sequence never moves backwards.
func (s *Sequence) Observe(id int) {
	for {
		current := s.last.Load()
		if int64(id) <= current {
			return
		}

		if s.last.CompareAndSwap(current, int64(id)) {
			return
		}
	}
}
