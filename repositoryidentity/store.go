package repositoryidentity

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-repository-identity/identity"
	"github.com/goliatone/go-repository-identity/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Store reads and writes entities of type T through the identity pool of the
// session bound to each call's context.
type Store[T any, PT identity.Entity[T]] struct {
	source   RecordSource
	sessions *session.Registry
	logger   *zap.Logger
}

// New creates a Store over source. Every call needs a context carrying a
// session id, see session.Begin.
func New[T any, PT identity.Entity[T]](source RecordSource, sessions *session.Registry, logger *zap.Logger) *Store[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T, PT]{
		source:   source,
		sessions: sessions,
		logger:   logger,
	}
}

// FindByID returns the session's instance for id. A live pooled instance is
// returned without reaching the source.
func (s *Store[T, PT]) FindByID(ctx context.Context, id identity.ID) (PT, error) {
	pool, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	if instance, ok := identity.Lookup[T, PT](pool, id); ok {
		return instance, nil
	}

	raw, err := s.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return identity.Materialize[T, PT](pool, raw)
}

// Find materializes every record matching filter in the session's pool.
// Records already pooled come back as the existing instances.
func (s *Store[T, PT]) Find(ctx context.Context, filter any) ([]PT, error) {
	pool, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.source.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	instances := make([]PT, 0, len(records))
	for i, raw := range records {
		instance, err := identity.Materialize[T, PT](pool, raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// Save pools instance in the session and writes it to the source.
// An instance that fails to encode, or that conflicts with the one already
// pooled for its id, is rejected before it is pooled or written.
func (s *Store[T, PT]) Save(ctx context.Context, instance PT) error {
	if instance == nil {
		return identity.ErrNilInstance
	}

	pool, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}

	raw, err := bson.Marshal(instance)
	if err != nil {
		return fmt.Errorf("encode %s: %w", instance.ModelID().Hex(), err)
	}

	if err := identity.Register(pool, instance); err != nil {
		return err
	}

	return s.source.Upsert(ctx, instance.ModelID(), raw)
}

// Delete removes the record from the source and invalidates id in the
// session's pool. The id is invalidated even when the source had no record.
func (s *Store[T, PT]) Delete(ctx context.Context, id identity.ID) error {
	pool, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}

	err = s.source.DeleteByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	pool.Invalidate(id)
	s.logger.Debug("record deleted", zap.String("id", id.Hex()))
	return err
}
