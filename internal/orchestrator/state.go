package orchestrator

import "fmt"

// RunState is a Controller lifecycle state.
type RunState string

const (
	StateInit        RunState = "init"
	StateLoading     RunState = "loading"
	StateScheduling  RunState = "scheduling"
	StateAggregating RunState = "aggregating"
	StateDone        RunState = "done"
	StateError       RunState = "error"
)

var allowedTransitions = map[RunState]map[RunState]struct{}{
	StateInit: {
		StateLoading: {},
		StateError:   {},
	},
	StateLoading: {
		StateScheduling: {},
		StateError:      {},
	},
	StateScheduling: {
		StateAggregating: {},
		StateError:       {},
	},
	StateAggregating: {
		StateDone:  {},
		StateError: {},
	},
	StateDone:  {},
	StateError: {},
}

// Terminal reports whether no transition leaves s.
func (s RunState) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// ValidateTransition returns an error unless from -> to is allowed.
func ValidateTransition(from, to RunState) error {
	next, ok := allowedTransitions[from]
	if !ok {
		return fmt.Errorf("invalid run state: %q", from)
	}
	if _, ok := allowedTransitions[to]; !ok {
		return fmt.Errorf("invalid run state: %q", to)
	}
	if _, ok := next[to]; !ok {
		return fmt.Errorf("invalid run transition: %s -> %s", from, to)
	}
	return nil
}
