package di

import (
	"github.com/goliatone/go-repository-identity/cache"
	"github.com/goliatone/go-repository-identity/identity"
	"github.com/goliatone/go-repository-identity/internal/cacheinfra"
	"github.com/goliatone/go-repository-identity/pkg/metrics"
	"github.com/goliatone/go-repository-identity/repositoryidentity"
	"github.com/goliatone/go-repository-identity/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// MetricsName labels the events of pools created by a Container.
const MetricsName = "session"

// Config configures every component a Container builds.
type Config struct {
	// Pool configures the identity pool of each session.
	Pool identity.Config

	// Cache configures the shared raw record cache.
	Cache cache.Config

	// CacheRecords wraps sources given to NewStore in a CachedSource.
	CacheRecords bool
}

// DefaultConfig returns the default pool settings with record caching enabled.
func DefaultConfig() Config {
	return Config{
		Pool:         identity.DefaultConfig(),
		Cache:        fromInternal(cacheinfra.DefaultConfig()),
		CacheRecords: true,
	}
}

func fromInternal(c cacheinfra.Config) cache.Config {
	cfg := cache.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
	if c.EarlyRefresh != nil {
		cfg.EarlyRefresh = &cache.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}
	return cfg
}

func toInternal(c cache.Config) cacheinfra.Config {
	cfg := cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
	if c.EarlyRefresh != nil {
		cfg.EarlyRefresh = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}
	return cfg
}

// Option customizes a Container.
type Option func(*Container)

// WithLogger sets the logger shared by the registry, pools and sources.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer enables pool metrics, registered on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// Container provides dependency injection for identity related components.
// It owns the session registry, the shared record cache and the metrics
// collector, and provides factory functions for stores.
type Container struct {
	config     Config
	logger     *zap.Logger
	registerer prometheus.Registerer
	records    cache.RecordCache
	sessions   *session.Registry
	metrics    *metrics.Collector
}

// NewContainer validates config and builds every component it enables.
func NewContainer(config Config, opts ...Option) (*Container, error) {
	c := &Container{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	poolOpts := []identity.Option{identity.WithLogger(c.logger)}
	if c.registerer != nil {
		collector, err := metrics.NewCollector(MetricsName, c.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = collector
		poolOpts = append(poolOpts, identity.WithObserver(collector))
	}

	sessions, err := session.NewRegistryWithConfig(config.Pool, c.logger, poolOpts...)
	if err != nil {
		return nil, err
	}
	c.sessions = sessions

	if config.CacheRecords {
		records, err := cacheinfra.NewSturdycService(toInternal(config.Cache))
		if err != nil {
			return nil, err
		}
		c.records = records
	}

	return c, nil
}

// NewContainerWithDefaults creates a new DI container using DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(DefaultConfig(), opts...)
}

// Sessions returns the session registry shared by every store.
func (c *Container) Sessions() *session.Registry {
	return c.sessions
}

// RecordCache returns the shared record cache, or nil when caching is disabled.
func (c *Container) RecordCache() cache.RecordCache {
	return c.records
}

// Metrics returns the pool metrics collector, or nil without a registerer.
func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// NewStore creates a store for T over source. When record caching is enabled
// the source is wrapped in a CachedSource keyed by collection.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewStore[User](container, "users", source)
func NewStore[T any, PT identity.Entity[T]](c *Container, collection string, source repositoryidentity.RecordSource) *repositoryidentity.Store[T, PT] {
	if c.records != nil {
		source = repositoryidentity.NewCachedSource(source, c.records, collection, c.logger)
	}
	return repositoryidentity.New[T, PT](source, c.sessions, c.logger)
}
