// Package schedule generates phase-locked sampling instants.
//
// A Schedule describes instants PhaseStart, PhaseStart+CycleLength, ... that
// are produced lazily through an immutable Cursor: the cursor only moves to
// the next instant once the current one has been matched against a stored
// timestamp.
package schedule

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalid indicates schedule parameters that cannot describe a cycle.
	ErrInvalid = errors.New("schedule: invalid parameters")
)

type Schedule struct {
	PhaseStart  float64
	CycleLength float64
	// Tolerance widens matching to |t-instant| <= Tolerance. Zero means
	// exact floating-point equality.
	Tolerance float64
}

// Validate rejects non-finite values, a non-positive cycle length and a
// negative tolerance.
func (s Schedule) Validate() error {
	switch {
	case math.IsNaN(s.PhaseStart) || math.IsInf(s.PhaseStart, 0):
		return fmt.Errorf("%w: phase start %v is not finite", ErrInvalid, s.PhaseStart)
	case math.IsNaN(s.CycleLength) || math.IsInf(s.CycleLength, 0):
		return fmt.Errorf("%w: cycle length %v is not finite", ErrInvalid, s.CycleLength)
	case s.CycleLength <= 0:
		return fmt.Errorf("%w: cycle length %v must be positive", ErrInvalid, s.CycleLength)
	case math.IsNaN(s.Tolerance) || s.Tolerance < 0:
		return fmt.Errorf("%w: tolerance %v must be non-negative", ErrInvalid, s.Tolerance)
	}
	return nil
}

// Start returns the cursor positioned on the first instant.
func (s Schedule) Start() Cursor {
	return Cursor{next: s.PhaseStart, cycle: s.CycleLength, tol: s.Tolerance}
}

// Preview returns the timestamps that would be sampled if a snapshot existed
// at every scheduled instant. times must be ascending.
func (s Schedule) Preview(times []float64) []float64 {
	var hits []float64
	c := s.Start()
	for _, t := range times {
		if c.Match(t) {
			hits = append(hits, t)
			c = c.Advance()
		}
	}
	return hits
}

// Cursor is one position in the lazy instant sequence. It is a value type;
// Advance returns a new cursor and leaves the receiver unchanged.
type Cursor struct {
	next  float64
	cycle float64
	tol   float64
	k     int
}

// Next is the instant the cursor is waiting for.
func (c Cursor) Next() float64 {
	return c.next
}

// Index is the number of instants consumed so far.
func (c Cursor) Index() int {
	return c.k
}

// Match reports whether t hits the pending instant.
func (c Cursor) Match(t float64) bool {
	if c.tol == 0 {
		return t == c.next
	}
	return math.Abs(t-c.next) <= c.tol
}

// Advance moves to the following instant by adding one cycle length to the
// pending instant, so accumulated offsets match repeated addition.
func (c Cursor) Advance() Cursor {
	c.next += c.cycle
	c.k++
	return c
}
