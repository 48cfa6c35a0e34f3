package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-repository-identity/identity"
	"go.mongodb.org/mongo-driver/bson"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// ErrNotFound reports that the source of truth holds no record for a key.
var ErrNotFound = errors.New("cache: record not found")

// FetchFn loads a record from the source of truth on a cache miss.
type FetchFn func(ctx context.Context) (bson.Raw, error)

// RecordCache is a read-through cache of raw records.
//
// It caches bytes, not instances: identity is still owned by the session's
// identity.Pool, which decodes cached records like any other.
type RecordCache interface {
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn) (bson.Raw, error)
	Delete(ctx context.Context, key string) error
}

// RecordKey builds the cache key for the record identified by id in collection.
func RecordKey(collection string, id identity.ID) string {
	return strings.Join([]string{"record", collection, id.Hex()}, KeySeparator)
}
