package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationInvalid  = errors.New("pricing: configuration invalid")
	ErrConfigurationNotFound = errors.New("pricing: configuration not found")
	ErrRuleRejected          = errors.New("pricing: discount rule rejected")
	ErrQuoteNotFound         = errors.New("pricing: quote not found")
	ErrQuoteExpired          = errors.New("pricing: quote expired")
	ErrInvalidParams         = errors.New("pricing: invalid booking parameters")
	ErrTooManyGuests         = errors.New("pricing: guests exceed max occupancy")
)

// ConfigurationInvalidError is raised by the calculator's integrity checks.
// Reaching it means an upstream validation let corrupt data through.
type ConfigurationInvalidError struct {
	Field  string
	Reason string
}

func (e *ConfigurationInvalidError) Error() string {
	return fmt.Sprintf("pricing: invalid configuration field %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationInvalidError) Is(target error) bool {
	return target == ErrConfigurationInvalid
}

func invalid(field, reason string) *ConfigurationInvalidError {
	return &ConfigurationInvalidError{Field: field, Reason: reason}
}

// ErrorKind classifies why a discount rule was rejected.
type ErrorKind string

const (
	KindOutOfRange     ErrorKind = "OutOfRange"
	KindPastDate       ErrorKind = "PastDate"
	KindInvertedRange  ErrorKind = "InvertedRange"
	KindRangeTooLong   ErrorKind = "RangeTooLong"
	KindTooFarInFuture ErrorKind = "TooFarInFuture"
	KindOverlap        ErrorKind = "Overlap"
	KindDuplicateRule  ErrorKind = "DuplicateRule"
)

// RuleRejectedError carries the rejection kind and a message fit for inline display.
type RuleRejectedError struct {
	Kind    ErrorKind
	Message string
}

func (e *RuleRejectedError) Error() string {
	return fmt.Sprintf("pricing: rule rejected (%s): %s", e.Kind, e.Message)
}

func (e *RuleRejectedError) Is(target error) bool {
	return target == ErrRuleRejected
}

// NewRuleRejectedError creates a RuleRejectedError.
func NewRuleRejectedError(kind ErrorKind, format string, args ...any) *RuleRejectedError {
	return &RuleRejectedError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RejectionKind extracts the ErrorKind from err, if it is a rule rejection.
func RejectionKind(err error) (ErrorKind, bool) {
	var rejected *RuleRejectedError
	if errors.As(err, &rejected) {
		return rejected.Kind, true
	}
	return "", false
}
