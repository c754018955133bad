/*
errors.go - Centralized error types for the grading engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calculators themselves never fail: missing factor options score zero
  and negative overlap is clamped. Errors only guard the inputs the engine
  cannot give a meaning to (empty job lists, non-positive parameters) and
  lookups performed by the session controller.

ERROR CATEGORIES:
  1. Parameter errors - Partition requests the engine cannot satisfy
  2. Lookup errors - Grade or job IDs that do not exist

USAGE:
  if errors.Is(err, grading.ErrNoJobs) {
      // ask the user to add jobs first
  }

SEE ALSO:
  - policy.go: Returns ErrNoJobs / ParameterError
  - engine/session.go: Returns lookup errors
*/
package grading

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoJobs is returned when a partition is requested for an empty job list.
	ErrNoJobs = errors.New("no jobs to partition")

	// ErrInvalidParameter is returned for a grade count or interval <= 0.
	ErrInvalidParameter = errors.New("invalid partition parameter")

	// ErrUnknownMethod is returned for an evaluation method with no registered policy.
	ErrUnknownMethod = errors.New("unknown evaluation method")

	// ErrGradeNotFound is returned when an edit references a missing grade.
	ErrGradeNotFound = errors.New("grade not found")

	// ErrJobNotFound is returned when an edit references a missing job.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidEdit is returned when an edit carries an unusable value.
	ErrInvalidEdit = errors.New("invalid grade edit")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParameterError reports which method rejected which parameter.
type ParameterError struct {
	Method Method
	Param  int
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s parameter %d: %s", e.Method, e.Param, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoJobs) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrInvalidEdit)
}

// IsNotFound returns true if the error indicates a missing grade or job.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGradeNotFound) ||
		errors.Is(err, ErrJobNotFound)
}
