// Package identity provides a per-session identity map for decoded entities.
//
// # Overview
//
// A Pool guarantees that, for as long as an instance is alive, every record
// with the same identifier materializes to that same pointer. Instances are
// held through weak pointers so the garbage collector can reclaim them when
// application code drops them. A bounded pin ring keeps the most recently
// pooled instances strongly reachable.
//
// # Basic Usage
//
//	type Cat struct {
//		ID   primitive.ObjectID `bson:"_id"`
//		Name string             `bson:"name"`
//	}
//
//	func (c *Cat) ModelID() identity.ID { return c.ID }
//
//	pool := identity.NewWithDefaults()
//	cat, err := identity.Materialize[Cat](pool, raw)
//
// A second Materialize with a record carrying the same "_id" returns the same
// *Cat without decoding, as long as the first one is still reachable.
//
// # Pinning
//
// Config.PinCapacity bounds how many instances the pool keeps alive on its
// own. Every Register moves the instance to the front of the ring; instances
// falling off the back are only weakly held from then on.
//
// # Invalidation
//
// Invalidate removes an ID and excludes it from pooling for the rest of the
// pool's life. Use a fresh pool to reuse a deleted identifier.
//
// # Cleanup
//
// Reclaimed instances leave empty slots behind. Cleanup sweeps them and Size
// always sweeps before counting. Nothing runs in the background.
//
// # Concurrency
//
// Pools are not synchronized. Bind one pool per session with the session
// package, or wrap every call in your own lock.
package identity
