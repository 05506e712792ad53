package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staynest/internal/app/uow"
	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	domainuser "staynest/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Repositories that do not need transactional guarantees (users, reviews)
// may be backed by other stores.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	UsersRepo      domainuser.Repository
	ReviewsRepo    domainreviews.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:         f.DB,
		session:    session,
		properties: f.PropertiesRepo,
		bookings:   f.BookingsRepo,
		users:      f.UsersRepo,
		reviews:    f.ReviewsRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
