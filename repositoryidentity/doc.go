// Package repositoryidentity provides session scoped, identity preserving
// stores on top of raw record sources.
//
// # Overview
//
// A Store[T] reads records from a RecordSource and materializes them through
// the identity pool of the session bound to the call's context. Within one
// session, every read of the same id returns the same *T for as long as the
// caller keeps it alive, and writes keep the pool consistent with the source.
//
// # Basic Usage
//
//	sessions, err := session.NewRegistryWithConfig(identity.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//
//	cats := repositoryidentity.New[Cat](repositoryidentity.NewMongoSource(coll), sessions, logger)
//
//	ctx = session.Begin(ctx)
//	a, _ := cats.FindByID(ctx, id)
//	b, _ := cats.FindByID(ctx, id) // a == b, the source is read once
//
// # Sources
//
//   - MongoSource: a MongoDB collection keyed by "_id"
//   - CachedSource: a read-through decorator over any RecordSource, backed by
//     a cache.RecordCache
//
// # Writes
//
// Save registers the instance in the session's pool before writing it, so a
// second instance for an id already pooled is rejected with
// identity.ErrIdentityConflict and nothing reaches the source. Delete
// invalidates the id in the session's pool: later reads in that session
// decode fresh instances that are never pooled.
//
// # Error Handling
//
// Source errors are returned unchanged. A missing record is reported as
// ErrNotFound by every source.
//
// # See Also
//
// For wiring a record cache, session registry and metrics together, see the
// pkg/di package.
package repositoryidentity
