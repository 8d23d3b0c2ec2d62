// Package store is the persistence gateway: a resource-agnostic document
// interface with a MongoDB implementation and an in-process one used for
// local development and tests.
package store

import (
	"context"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter selects documents. It follows MongoDB query syntax: field equality,
// dotted paths, and operator objects such as {"$in": [...]}.
type Filter map[string]any

// IDFilter matches the record whose _id is the given hex string.
func IDFilter(id string) (Filter, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ierr.NewValidation(`"id" must be a valid ObjectId`)
	}
	return Filter{models.FieldID: oid}, nil
}

// Store hands out collections by resource name.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection is the set of operations every resource is persisted through.
// Single-document operations are atomic; the *Many operations are not.
type Collection interface {
	Name() string

	// Create stores doc, assigning an _id when absent, and returns the stored document.
	Create(ctx context.Context, doc models.Record) (models.Record, error)
	// CreateMany stores docs and returns how many were written.
	CreateMany(ctx context.Context, docs []models.Record) (int64, error)

	// FindOne returns the first match or a not-found error.
	FindOne(ctx context.Context, filter Filter) (models.Record, error)
	// Find returns every match, possibly none.
	Find(ctx context.Context, filter Filter, opts *FindOptions) ([]models.Record, error)
	// Paginate returns one page of matches. Zero matches is a not-found error.
	Paginate(ctx context.Context, filter Filter, opts *Options) (*Page, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// UpdateOne applies patch as a field merge to the first match and returns
	// the updated document, or a not-found error.
	UpdateOne(ctx context.Context, filter Filter, patch models.Record) (models.Record, error)
	// UpdateMany applies patch to every match and returns the matched count.
	UpdateMany(ctx context.Context, filter Filter, patch models.Record) (int64, error)

	// DeleteOne removes the first match and returns it, or a not-found error.
	DeleteOne(ctx context.Context, filter Filter) (models.Record, error)
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

// Open builds the store selected by DB_DRIVER.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (Store, error) {
	if cfg.Driver == "memory" {
		log.Warnw("using in-memory document store, data is lost on restart")
		return NewMemoryStore(), nil
	}
	client, db, err := config.ConnectMongo(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewMongoStore(client, db), nil
}
