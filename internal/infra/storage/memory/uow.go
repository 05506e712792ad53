package memory

import (
	"context"
	"errors"

	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	domainuser "staynest/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	UsersRepo      domainuser.Repository
	ReviewsRepo    domainreviews.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; the repositories cover
// write conflicts themselves through optimistic locking and the booking
// store's save-time overlap guard.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.BookingsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties: f.PropertiesRepo,
		bookings:   f.BookingsRepo,
		users:      f.UsersRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties domainproperty.Repository
	bookings   domainbooking.Repository
	users      domainuser.Repository
	reviews    domainreviews.Repository
}

func (u *Unit) Properties() domainproperty.Repository {
	return u.properties
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
