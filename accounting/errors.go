// errors.go - Sentinel and structured errors for the accounting engine.
//
// Domain packages wrap these with errors.Is-friendly context. The engine
// has exactly two failure modes: a cadence value it does not know, and a
// schedule whose step function never reaches "now".
package accounting

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCadence is returned for cadence values outside the
	// supported set. Enumeration fails fast instead of looping.
	ErrUnknownCadence = errors.New("unknown cadence")

	// ErrScheduleStalled is returned when period enumeration exceeds its
	// iteration bound, i.e. the schedule cannot reach the requested
	// instant under the expected step function.
	ErrScheduleStalled = errors.New("schedule enumeration stalled")
)

// UnknownCadenceError carries the offending value.
type UnknownCadenceError struct {
	Value string
}

func (e *UnknownCadenceError) Error() string {
	return fmt.Sprintf("unknown cadence %q", e.Value)
}

func (e *UnknownCadenceError) Unwrap() error { return ErrUnknownCadence }
