package uow

import (
	"context"

	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	domainuser "staynest/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
