package repositoryidentity

import (
	"context"

	"github.com/goliatone/go-repository-identity/cache"
	"github.com/goliatone/go-repository-identity/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var _ RecordSource = (*CachedSource)(nil)

// CachedSource decorates a RecordSource with a read-through record cache.
// Only FindByID is cached; writes drop the cached record for their id.
type CachedSource struct {
	base       RecordSource
	records    cache.RecordCache
	collection string
	logger     *zap.Logger
}

// NewCachedSource wraps base so FindByID goes through records first.
// collection namespaces the cache keys.
func NewCachedSource(base RecordSource, records cache.RecordCache, collection string, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		base:       base,
		records:    records,
		collection: collection,
		logger:     logger,
	}
}

// FindByID returns the cached record for id, fetching it from the base source
// on a miss.
func (c *CachedSource) FindByID(ctx context.Context, id identity.ID) (bson.Raw, error) {
	return c.records.GetOrFetch(ctx, cache.RecordKey(c.collection, id), func(ctx context.Context) (bson.Raw, error) {
		return c.base.FindByID(ctx, id)
	})
}

// Find passes through to the base source.
func (c *CachedSource) Find(ctx context.Context, filter any) ([]bson.Raw, error) {
	return c.base.Find(ctx, filter)
}

// Upsert writes to the base source and drops the cached record.
func (c *CachedSource) Upsert(ctx context.Context, id identity.ID, raw bson.Raw) error {
	if err := c.base.Upsert(ctx, id, raw); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// DeleteByID deletes from the base source and drops the cached record.
func (c *CachedSource) DeleteByID(ctx context.Context, id identity.ID) error {
	err := c.base.DeleteByID(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedSource) invalidate(ctx context.Context, id identity.ID) {
	key := cache.RecordKey(c.collection, id)
	if err := c.records.Delete(ctx, key); err != nil {
		c.logger.Warn("failed to drop cached record",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
