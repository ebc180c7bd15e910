package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxSteps bounds the node evaluations of one Eval call.
const DefaultMaxSteps = 1_000_000

// quota counts node evaluations and enforces a maximum.
//
// Aggregates multiply the work of their selector by the length of the
// source, so nested aggregates over large inputs are cut off here instead
// of running unbounded.
type quota struct {
	maxSteps int
	current  int
}

func newQuota(maxSteps int) *quota {
	return &quota{maxSteps: maxSteps}
}

// check increments the step counter and validates against the limit. A
// non-positive limit disables the check.
func (q *quota) check() error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{Steps: q.current, Limit: q.maxSteps}
	}
	return nil
}

// StepsExceededError is returned when an evaluation exceeds the steps
// quota.
type StepsExceededError struct {
	Steps int
	Limit int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("evaluation exceeded max steps quota: %d steps > %d limit", e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
