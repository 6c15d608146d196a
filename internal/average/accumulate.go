package average

import (
	"errors"
	"fmt"

	"github.com/san-kum/phaseavg/internal/field"
)

// sweep carries the bookkeeping shared by every instantiation of accumulate.
type sweep struct {
	runner  *Runner
	req     Request
	name    string
	count   int
	samples []Visit
}

func (s *sweep) visit(v Visit) {
	if v.Scheduled {
		s.samples = append(s.samples, v)
	}
	for _, o := range s.runner.observers {
		o.OnVisit(v)
	}
}

// accumulate folds the snapshots at scheduled instants into a sum shaped like
// base and returns the mean. base itself only provides the shape.
func accumulate[T field.Value[T]](s *sweep, times []float64, base *field.Raw) (*field.Raw, error) {
	r := s.runner
	sum, err := field.FromRaw[T](s.name, base)
	if err != nil {
		return nil, err
	}
	sum.Zero()

	r.setState(StateAccumulating)
	cursor := s.req.Schedule.Start()
	for _, t := range times {
		r.store.SetTime(t)
		if !cursor.Match(t) {
			s.visit(Visit{Time: t, Status: StatusSkipped})
			continue
		}

		v := Visit{Time: t, Instant: cursor.Next(), Cycle: cursor.Index(), Scheduled: true}
		cursor = cursor.Advance()
		timeName := r.store.TimeName(t)
		r.log.Info("time", "time", timeName, "k", v.Cycle)
		if mt, ok := r.store.(MeshTracker); ok {
			r.log.Debug("mesh", "instance", mt.MeshInstance())
		}

		snap, err := load[T](r.store, s.req, t)
		if err != nil {
			v.Status, v.Err = missStatus(err), err
			r.log.Info("no field", "field", s.req.Field, "time", timeName, "status", v.Status)
			s.visit(v)
			continue
		}
		if err := sum.AddField(snap); err != nil {
			return nil, fmt.Errorf("average: %s at %s: %w", s.req.Field, timeName, err)
		}
		s.count++
		v.Status = StatusMatched
		v.MeanMag = meanMag(snap)
		r.log.Info("reading", "class", s.req.Kind.ClassName(), "field", s.req.Field)
		s.visit(v)
	}

	r.setState(StateFinalizing)
	if s.count > 0 {
		r.log.Info("fields added", "count", s.count)
		sum.Divide(float64(s.count))
	}
	return sum.Raw(), nil
}

func load[T field.Value[T]](store Store, req Request, t float64) (*field.Field[T], error) {
	raw, err := store.Read(req.Field, t, req.Kind)
	if err != nil {
		return nil, err
	}
	return field.FromRaw[T](req.Field, raw)
}

func meanMag[T field.Value[T]](f *field.Field[T]) float64 {
	if f.Len() == 0 {
		return 0
	}
	total := 0.0
	for _, v := range f.Values {
		total += v.Mag()
	}
	return total / float64(f.Len())
}

func missStatus(err error) Status {
	switch {
	case errors.Is(err, field.ErrNotFound):
		return StatusMissing
	case errors.Is(err, field.ErrKindMismatch):
		return StatusMismatched
	}
	return StatusUnreadable
}
