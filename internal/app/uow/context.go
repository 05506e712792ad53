package uow

import (
	"context"
	"errors"
)

// ErrUnitOfWorkMissing is returned by handlers that need a transaction but
// were dispatched outside the transaction middleware.
var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type unitKey struct{}

// ContextWithUnitOfWork attaches a unit of work so downstream handlers share
// its repositories and commit scope.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the ambient unit of work, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
