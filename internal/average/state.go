package average

// State is the lifecycle position of a Runner.
type State int

const (
	StateInit State = iota
	StateValidatingBase
	StateAccumulating
	StateFinalizing
	StateWritten
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateValidatingBase:
		return "validating-base"
	case StateAccumulating:
		return "accumulating"
	case StateFinalizing:
		return "finalizing"
	case StateWritten:
		return "written"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateWritten || s == StateFailed
}
