package listings

import (
	"errors"
	"fmt"
)

var (
	ErrDraftNotFound     = errors.New("listings: draft not found")
	ErrListingNotFound   = errors.New("listings: listing not found")
	ErrNotOwner          = errors.New("listings: draft belongs to another host")
	ErrUnknownStep       = errors.New("listings: unknown step")
	ErrUnknownSection    = errors.New("listings: unknown section")
	ErrSectionNotInFlow  = errors.New("listings: section not part of this flow")
	ErrInvalidState      = errors.New("listings: invalid state transition")
	ErrStepIncomplete    = errors.New("listings: step incomplete")
	ErrPublishValidation = errors.New("listings: publish validation failed")
	ErrPublishInFlight   = errors.New("listings: publish already in progress")
	ErrRemoteFailure     = errors.New("listings: remote failure")
)

// StepIncompleteError blocks a forward move past a step whose predicate fails.
type StepIncompleteError struct {
	Step   StepID
	Reason string
}

func (e *StepIncompleteError) Error() string {
	return fmt.Sprintf("listings: step %s incomplete: %s", e.Step, e.Reason)
}

func (e *StepIncompleteError) Is(target error) bool {
	return target == ErrStepIncomplete
}

// PublishValidationError is the single blocking message shown before publish.
type PublishValidationError struct {
	Step    StepID
	Message string
}

func (e *PublishValidationError) Error() string {
	return "listings: cannot publish: " + e.Message
}

func (e *PublishValidationError) Is(target error) bool {
	return target == ErrPublishValidation
}

// RemoteError wraps a persistence boundary failure without interpreting it.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("listings: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}

// Remote wraps err as a RemoteError; nil stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
