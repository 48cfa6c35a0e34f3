// Package cache defines the raw record cache that sits between a record
// source and the identity pools that decode its records.
//
// # Overview
//
// The package exports the RecordCache interface, the FetchFn read-through
// callback and the RecordKey helper:
//
//   - RecordCache: read-through GetOrFetch and Delete over bson.Raw records
//   - RecordKey: builds the stable key for a record in a collection
//   - ErrNotFound: reported by a FetchFn when the source holds no record
//
// The cache stores bytes only. Two sessions reading the same cached record
// each decode it into their own pool and never share an instance.
//
// # Basic Usage
//
//	key := cache.RecordKey("cats", id)
//	raw, err := records.GetOrFetch(ctx, key, func(ctx context.Context) (bson.Raw, error) {
//		return source.FindByID(ctx, id)
//	})
//
// After a write, drop the key so the next read goes back to the source:
//
//	_ = records.Delete(ctx, cache.RecordKey("cats", id))
//
// # Missing Records
//
// A FetchFn that returns ErrNotFound marks the key as missing. Backends that
// support it remember the answer until the TTL expires and keep returning
// ErrNotFound without calling the source again.
//
// # See Also
//
// The sturdyc backed implementation lives in internal/cacheinfra and is
// wired by pkg/di. The repositoryidentity package uses RecordCache to
// decorate record sources.
package cache
