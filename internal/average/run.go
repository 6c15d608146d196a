package average

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/phaseavg/internal/field"
)

// OutputSuffix joins the base field name and the phase start in output names.
const OutputSuffix = "_phase_locked_"

// OutputName derives the output field name from the base name and the
// textual phase start.
func OutputName(base, phaseStart string) string {
	return base + OutputSuffix + phaseStart
}

type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// Runner performs one averaging run against a Store. A Runner is single use
// and not safe for concurrent use.
type Runner struct {
	store     Store
	log       *slog.Logger
	observers []Observer
	state     State
}

func New(store Store, opts ...Option) *Runner {
	r := &Runner{store: store, log: slog.Default(), state: StateInit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run is shorthand for New(store, opts...).Run(times, req).
func Run(store Store, times []float64, req Request, opts ...Option) (*Result, error) {
	return New(store, opts...).Run(times, req)
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) setState(s State) {
	r.log.Debug("run state", "from", r.state, "to", s)
	r.state = s
}

func (r *Runner) fail(err error) (*Result, error) {
	r.setState(StateFailed)
	return nil, err
}

// Run averages req.Field over times, which must be ascending, and writes the
// result at the last timestamp.
func (r *Runner) Run(times []float64, req Request) (*Result, error) {
	if r.state != StateInit {
		return nil, fmt.Errorf("average: runner already used (state %s)", r.state)
	}
	if len(times) == 0 {
		return r.fail(ErrNoTimes)
	}
	if !req.Kind.Valid() {
		return r.fail(fmt.Errorf("%w: kind %d", field.ErrUnknownFieldType, req.Kind))
	}
	if err := req.Schedule.Validate(); err != nil {
		return r.fail(err)
	}

	name := OutputName(req.Field, r.store.TimeName(req.Schedule.PhaseStart))

	r.setState(StateValidatingBase)
	first := times[0]
	r.store.SetTime(first)
	base, err := r.store.Read(req.Field, first, req.Kind)
	if err != nil {
		return r.fail(baseFieldError(req, r.store.TimeName(first), err))
	}
	r.log.Info("mean field", "name", name, "class", req.Kind.ClassName())

	s := &sweep{runner: r, req: req, name: name}
	var out *field.Raw
	switch req.Kind {
	case field.KindScalar:
		out, err = accumulate[field.Scalar](s, times, base)
	case field.KindVector:
		out, err = accumulate[field.Vector](s, times, base)
	case field.KindTensor:
		out, err = accumulate[field.Tensor](s, times, base)
	case field.KindSymmTensor:
		out, err = accumulate[field.SymmTensor](s, times, base)
	case field.KindSphTensor:
		out, err = accumulate[field.SphTensor](s, times, base)
	}
	if err != nil {
		return r.fail(err)
	}

	last := times[len(times)-1]
	lastName := r.store.TimeName(last)
	r.log.Info("writing", "name", name, "time", lastName)
	if err := r.store.Write(name, last, out); err != nil {
		return r.fail(fmt.Errorf("average: write %s at %s: %w", name, lastName, err))
	}
	r.setState(StateWritten)

	return &Result{
		Name:     name,
		Field:    req.Field,
		Kind:     req.Kind,
		Schedule: req.Schedule,
		Time:     last,
		TimeName: lastName,
		Count:    s.count,
		Visited:  len(times),
		Samples:  s.samples,
		Summary:  field.Summarize(out),
	}, nil
}
