package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-repository-identity/cache"
	"github.com/viccon/sturdyc"
	"go.mongodb.org/mongo-driver/bson"
)

// Config holds the configuration for the sturdyc record cache.
type Config struct {
	// Capacity defines the maximum number of records the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards. Must be greater than 0.
	NumShards int

	// TTL is how long a cached record stays valid. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when a shard is
	// full. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh enables background refreshes of hot records. Nil disables it.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage caches "not found" answers so repeated lookups of
	// a deleted id do not reach the source.
	MissingRecordStorage bool

	// EvictionInterval sets how often expired records are swept.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config sized for per-process record caching.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            64,
		TTL:                  time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
	}
}

// ToSturdycOptions converts the optional settings to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 || c.EarlyRefresh.MaxAsyncRefreshTime < 0 ||
			c.EarlyRefresh.SyncRefreshTime < 0 || c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh", Message: "durations must be non-negative"}
		}
		if c.EarlyRefresh.MinAsyncRefreshTime > c.EarlyRefresh.MaxAsyncRefreshTime {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must not exceed MaxAsyncRefreshTime"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycService caches raw records in a sturdyc client.
type sturdycService struct {
	client *sturdyc.Client[bson.Raw]
}

var _ cache.RecordCache = (*sturdycService)(nil)

// NewSturdycService validates cfg and creates a sturdyc backed record cache.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[bson.Raw](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// GetOrFetch implements cache.RecordCache.
// A fetchFn returning cache.ErrNotFound is reported to sturdyc as a missing
// record, and missing records come back as cache.ErrNotFound.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn cache.FetchFn) (bson.Raw, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	raw, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (bson.Raw, error) {
		raw, err := fetchFn(ctx)
		if errors.Is(err, cache.ErrNotFound) {
			return nil, sturdyc.ErrNotFound
		}
		return raw, err
	})
	if errors.Is(err, sturdyc.ErrMissingRecord) || errors.Is(err, sturdyc.ErrNotFound) {
		return nil, cache.ErrNotFound
	}
	return raw, err
}

// Delete implements cache.RecordCache.
func (s *sturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Size returns the number of cached entries, missing records included.
func (s *sturdycService) Size() int {
	return s.client.Size()
}
