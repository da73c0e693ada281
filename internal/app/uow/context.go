package uow

import (
	"context"
	"errors"
)

// ErrUnitOfWorkMissing is returned when a repository call runs outside a
// transaction, e.g. a draft handler invoked without the Transaction middleware.
var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

// ContextWithUnitOfWork attaches unit so nested handlers share its listing,
// quote and booking repositories.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}
