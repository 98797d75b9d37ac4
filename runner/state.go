package runner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoad wraps read, parse and compile failures. No script code ran.
	ErrLoad = errors.New("load error")
	// ErrRuntime wraps unhandled script errors and manipulator faults.
	ErrRuntime = errors.New("runtime error")
	// ErrCancelled is the cause a run is cancelled with by Stop.
	ErrCancelled = errors.New("cancelled")
	// ErrAlreadyRunning is returned when a run is started while another is
	// still going.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning is returned when stopping with no run in progress.
	ErrNotRunning = errors.New("not running")
)

// State is the lifecycle state of a Runner.
type State int

const (
	Created State = iota
	Running
	Completed
	LoadError
	RuntimeError
	Cancelled
)

var stateNames = [...]string{"created", "running", "completed", "load_error", "runtime_error", "cancelled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s >= Completed }

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if strings.EqualFold(n, string(b)) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Result is how a run ended. Err is nil for Completed and otherwise wraps
// ErrLoad, ErrRuntime or ErrCancelled.
type Result struct {
	State State
	Err   error
}
