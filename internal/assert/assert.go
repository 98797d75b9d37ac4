// Package assert reports programming faults on hot paths that must not
// fail. Release builds hand the fault to the caller's handler and carry on;
// builds tagged padscript_debug panic so the fault is found in testing.
package assert

import "fmt"

// Fault is a broken invariant detected at runtime.
type Fault struct {
	Where string
	What  string
}

func (f Fault) Error() string { return fmt.Sprintf("%s: %s", f.Where, f.What) }

// Check returns false when cond does not hold. In debug builds it panics
// instead.
func Check(cond bool, where, what string) bool {
	if cond {
		return true
	}
	if debug {
		panic(Fault{Where: where, What: what})
	}
	return false
}
