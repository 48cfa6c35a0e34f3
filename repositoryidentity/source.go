package repositoryidentity

import (
	"context"

	"github.com/goliatone/go-repository-identity/cache"
	"github.com/goliatone/go-repository-identity/identity"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when a source holds no record for an id.
// It is the same value as cache.ErrNotFound so cached and uncached sources
// report misses identically.
var ErrNotFound = cache.ErrNotFound

// RecordSource is the source of truth for raw records of one collection.
type RecordSource interface {
	FindByID(ctx context.Context, id identity.ID) (bson.Raw, error)
	Find(ctx context.Context, filter any) ([]bson.Raw, error)
	Upsert(ctx context.Context, id identity.ID, raw bson.Raw) error
	DeleteByID(ctx context.Context, id identity.ID) error
}
