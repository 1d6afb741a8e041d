package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when there are neither findings nor instructions to compose from
	ErrEmptyInput = errors.New("feedback: empty input, nothing to compose")
	// ErrUnstructuredDraft is returned when a draft carries no sections to transform
	ErrUnstructuredDraft = errors.New("feedback: draft has no sections")
	// ErrDraftTextDiverged is returned when a draft's text was edited away from its sections
	ErrDraftTextDiverged = errors.New("feedback: draft text was edited and no longer matches its sections")
	// ErrInvalidProfile is returned when a style profile breaks its invariants
	ErrInvalidProfile = errors.New("style: invalid profile")
)

// UnknownActionError reports an unsupported quick action name. It is a programmer error and never retried.
type UnknownActionError struct{ Action ActionName }

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("quickaction: unknown action %q", string(e.Action))
}

// NoOpError signals that an action would leave the draft text byte-identical. Callers may ignore it.
type NoOpError struct{ Action ActionName }

func (e *NoOpError) Error() string {
	return fmt.Sprintf("quickaction: %s would not change the draft", e.Action)
}

// StaleRevisionError reports a request against a draft revision that is no longer current
type StaleRevisionError struct {
	Requested Version
	Current   Version
}

func (e *StaleRevisionError) Error() string {
	return fmt.Sprintf("session: stale revision %d.%d, current is %d.%d",
		e.Requested.Generation, e.Requested.Revision, e.Current.Generation, e.Current.Revision)
}

// UnknownGradeError reports a grade identifier outside the scale
type UnknownGradeError struct{ Name string }

func (e *UnknownGradeError) Error() string { return fmt.Sprintf("grade: unknown grade %q", e.Name) }

// IsNoOp reports whether err is a NoOpError
func IsNoOp(err error) bool {
	var noop *NoOpError
	return errors.As(err, &noop)
}

// IsStale reports whether err is a StaleRevisionError
func IsStale(err error) bool {
	var stale *StaleRevisionError
	return errors.As(err, &stale)
}

// IsUnknownAction reports whether err is an UnknownActionError
func IsUnknownAction(err error) bool {
	var unknown *UnknownActionError
	return errors.As(err, &unknown)
}
