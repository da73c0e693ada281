package middleware

import (
	"context"
	"errors"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}

// SelfValidating messages check their own required fields.
type SelfValidating interface {
	Validate() error
}

var ErrInvalidMessage = errors.New("middleware: invalid message")

// InvalidMessageError marks a message rejected before reaching its handler.
// It matches ErrInvalidMessage and still unwraps to the original cause.
type InvalidMessageError struct {
	Err error
}

func (e *InvalidMessageError) Error() string { return e.Err.Error() }

func (e *InvalidMessageError) Unwrap() error { return e.Err }

func (e *InvalidMessageError) Is(target error) bool { return target == ErrInvalidMessage }

// MessageValidator runs Validate on SelfValidating messages and passes the rest.
type MessageValidator struct{}

func (MessageValidator) Validate(ctx context.Context, message any) error {
	v, ok := message.(SelfValidating)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return &InvalidMessageError{Err: err}
	}
	return nil
}

var _ Validator = MessageValidator{}
