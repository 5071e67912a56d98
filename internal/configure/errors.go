package configure

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalancedRelease is reported when Release runs with no outstanding freeze.
	ErrUnbalancedRelease = errors.New("release without matching freeze")
	// ErrLockOverflow is reported when the freeze count would exceed the tracked locks.
	ErrLockOverflow = errors.New("freeze count exceeds tracked locks")
	// ErrLockLost is reported when a tracked lock was collected without Close.
	ErrLockLost = errors.New("tracked lock disappeared without untracking")
)

// InvariantError describes misuse of the buffer by its caller. These are
// programming errors, never transient conditions.
type InvariantError struct {
	Op        string
	LockCount int
	Tracked   int
	Err       error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("configure: %s: %v (lock_count=%d tracked=%d)", e.Op, e.Err, e.LockCount, e.Tracked)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// InvariantPolicy selects how invariant violations are handled.
type InvariantPolicy int

const (
	// PolicyPanic aborts with the violation. Intended for development.
	PolicyPanic InvariantPolicy = iota
	// PolicyLog logs the violation and refuses the offending step.
	PolicyLog
)

// ParseInvariantPolicy converts a config string to a policy.
func ParseInvariantPolicy(s string) (InvariantPolicy, error) {
	switch s {
	case "", "panic":
		return PolicyPanic, nil
	case "log":
		return PolicyLog, nil
	default:
		return PolicyPanic, fmt.Errorf("unknown invariant policy %q (valid: panic, log)", s)
	}
}

func (p InvariantPolicy) String() string {
	switch p {
	case PolicyLog:
		return "log"
	default:
		return "panic"
	}
}
