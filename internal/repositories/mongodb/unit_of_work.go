package mongodb

import (
	"context"

	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure UnitOfWork implements the interface
var _ repositories.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork wraps a MongoDB session transaction. Repositories pick the
// session up from the context, so any repository call made with the context
// passed to fn joins the transaction.
type UnitOfWork struct {
	client *mongo.Client
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(client *mongo.Client) *UnitOfWork {
	return &UnitOfWork{client: client}
}

// WithinTransaction runs fn inside one MongoDB transaction. fn returning an
// error aborts the transaction; transient commit errors are retried by the
// driver.
func (u *UnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := u.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
