package support

import (
	"context"

	"staynest/internal/app/uow"
)

// BeginReadOnlyUnit gives query handlers repository access without requiring
// the transaction middleware. A unit already on the context is reused as-is;
// otherwise a read-only unit is started and the returned cleanup rolls it
// back. Cleanup is nil when the unit was inherited.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	cleanup := func() { _ = unit.Rollback(execCtx) }
	return unit, execCtx, cleanup, nil
}
