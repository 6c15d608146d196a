package average

import (
	"github.com/san-kum/phaseavg/internal/field"
	"github.com/san-kum/phaseavg/internal/schedule"
)

// Store is the snapshot storage a run reads from and writes to.
//
// Read must return an error matching field.ErrNotFound for an absent field
// and field.ErrKindMismatch for a field stored under another kind.
type Store interface {
	// SetTime moves the current-time cursor observed by mesh-aware readers.
	SetTime(t float64)
	// TimeName renders a time with the store's canonical numeric format.
	TimeName(t float64) string
	Read(name string, t float64, kind field.Kind) (*field.Raw, error)
	Write(name string, t float64, raw *field.Raw) error
}

// MeshTracker is implemented by stores that follow topology changes.
type MeshTracker interface {
	MeshInstance() string
}

// Request describes one averaging run.
type Request struct {
	Field    string
	Kind     field.Kind
	Schedule schedule.Schedule
}

// Status classifies what happened at one visited timestamp.
type Status int

const (
	// StatusSkipped marks a timestamp that is not a scheduled instant.
	StatusSkipped Status = iota
	StatusMatched
	// StatusMissing marks a scheduled instant without a stored snapshot.
	StatusMissing
	// StatusMismatched marks a scheduled snapshot stored under another kind.
	StatusMismatched
	// StatusUnreadable marks a scheduled snapshot that failed to load.
	StatusUnreadable
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusMatched:
		return "matched"
	case StatusMissing:
		return "missing"
	case StatusMismatched:
		return "mismatched"
	case StatusUnreadable:
		return "unreadable"
	}
	return "unknown"
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for st := StatusSkipped; st <= StatusUnreadable; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Visit records one timestamp of the sweep.
type Visit struct {
	Time float64
	// Instant is the scheduled instant Time was matched against. Only
	// meaningful when Scheduled is set.
	Instant   float64
	// Cycle is k in phaseStartTime + k*cycleTime for Instant.
	Cycle     int
	Scheduled bool
	Status    Status
	// MeanMag is the mean per-entity magnitude of a matched snapshot.
	MeanMag float64
	// Err is the load error behind a miss.
	Err error
}

// Observer is notified of every visited timestamp, in order.
type Observer interface {
	OnVisit(v Visit)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(v Visit)

func (f ObserverFunc) OnVisit(v Visit) { f(v) }

// Result describes a completed run.
type Result struct {
	// Name is the output field name.
	Name     string
	Field    string
	Kind     field.Kind
	Schedule schedule.Schedule
	// Time is the timestamp the output was written at.
	Time     float64
	TimeName string
	Count    int
	Visited  int
	// Samples holds the scheduled instants only.
	Samples []Visit
	Summary field.Summary
}

// Matched returns the timestamps whose snapshots were added.
func (r *Result) Matched() []float64 {
	var out []float64
	for _, s := range r.Samples {
		if s.Status == StatusMatched {
			out = append(out, s.Time)
		}
	}
	return out
}
