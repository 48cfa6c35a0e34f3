// Package session binds one identity pool to each logical session.
//
// Sessions are identified by an id carried in a context.Context, so the pool
// for the current request or job travels with the context instead of living
// in global state:
//
//	registry, err := session.NewRegistryWithConfig(identity.DefaultConfig(), logger)
//	ctx = session.Begin(ctx)
//	pool, err := registry.Current(ctx)
//
// Reset swaps in a fresh pool, which is also the only way to pool an
// identifier that was invalidated earlier in the session.
package session
