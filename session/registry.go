package session

import (
	"context"
	"errors"

	"github.com/goliatone/go-repository-identity/identity"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// ErrNoSession is returned when the context does not carry a session id.
var ErrNoSession = errors.New("session: context carries no session id")

type sessionIDContextKey struct{}

// Begin returns a child context bound to a new, random session id.
func Begin(ctx context.Context) context.Context {
	return WithSessionID(ctx, uuid.NewString())
}

// WithSessionID binds ctx to the given session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDContextKey{}, id)
}

// IDFromContext returns the session id bound to ctx.
func IDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionIDContextKey{}).(string)
	return id, ok && id != ""
}

// Factory creates the pool for a new session.
type Factory func() *identity.Pool

// Registry binds exactly one identity pool to each session id.
//
// The registry itself is safe for concurrent use. The pools it hands out are
// not: a session must not use its pool from several goroutines at once.
type Registry struct {
	pools   *xsync.MapOf[string, *identity.Pool]
	factory Factory
	logger  *zap.Logger
}

// NewRegistry creates a registry that builds session pools with factory.
func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		pools:   xsync.NewMapOf[string, *identity.Pool](),
		factory: factory,
		logger:  logger,
	}
}

// NewRegistryWithConfig creates a registry whose sessions each get a pool
// built from cfg and opts. The config is validated once, up front.
func NewRegistryWithConfig(cfg identity.Config, logger *zap.Logger, opts ...identity.Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewRegistry(func() *identity.Pool {
		// cfg was validated above, New cannot fail
		p, _ := identity.New(cfg, opts...)
		return p
	}, logger), nil
}

// Current returns the pool bound to the session in ctx, creating it on first access.
func (r *Registry) Current(ctx context.Context) (*identity.Pool, error) {
	id, ok := IDFromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	pool, loaded := r.pools.LoadOrCompute(id, r.factory)
	if !loaded {
		r.logger.Debug("session pool created", zap.String("session", id))
	}
	return pool, nil
}

// Reset binds the session in ctx to a brand new, empty pool and returns it.
// Code still holding the previous pool keeps using it unaffected.
func (r *Registry) Reset(ctx context.Context) (*identity.Pool, error) {
	id, ok := IDFromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	pool := r.factory()
	r.pools.Store(id, pool)
	r.logger.Debug("session pool reset", zap.String("session", id))
	return pool, nil
}

// Release drops the pool bound to the session in ctx.
func (r *Registry) Release(ctx context.Context) error {
	id, ok := IDFromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	r.pools.Delete(id)
	return nil
}

// Len returns the number of sessions with a bound pool.
func (r *Registry) Len() int {
	return r.pools.Size()
}
