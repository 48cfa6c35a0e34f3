package di

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-repository-identity/identity"
	"github.com/goliatone/go-repository-identity/repositoryidentity"
	"github.com/goliatone/go-repository-identity/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a test model for integration tests
type User struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

func (u *User) ModelID() identity.ID { return u.ID }

// mockUserSource provides a fake record source for testing
type mockUserSource struct {
	mu        sync.RWMutex
	records   map[identity.ID]bson.Raw
	callCount map[string]int // Track method calls to verify caching behavior
}

func newMockUserSource() *mockUserSource {
	return &mockUserSource{
		records:   make(map[identity.ID]bson.Raw),
		callCount: make(map[string]int),
	}
}

func (m *mockUserSource) trackCall(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount[method]++
}

func (m *mockUserSource) getCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount[method]
}

func (m *mockUserSource) put(t *testing.T, user User) {
	t.Helper()
	raw, err := bson.Marshal(user)
	if err != nil {
		t.Fatalf("bson.Marshal() failed: %v", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[user.ID] = raw
}

func (m *mockUserSource) FindByID(ctx context.Context, id identity.ID) (bson.Raw, error) {
	m.trackCall("FindByID")
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.records[id]
	if !ok {
		return nil, repositoryidentity.ErrNotFound
	}
	return raw, nil
}

func (m *mockUserSource) Find(ctx context.Context, filter any) ([]bson.Raw, error) {
	m.trackCall("Find")
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bson.Raw, 0, len(m.records))
	for _, raw := range m.records {
		out = append(out, raw)
	}
	return out, nil
}

func (m *mockUserSource) Upsert(ctx context.Context, id identity.ID, raw bson.Raw) error {
	m.trackCall("Upsert")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = raw
	return nil
}

func (m *mockUserSource) DeleteByID(ctx context.Context, id identity.ID) error {
	m.trackCall("DeleteByID")
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return repositoryidentity.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func TestIntegration_SessionsShareRecordsNotInstances(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	source := newMockUserSource()
	user := User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	source.put(t, user)

	users := NewStore[User](container, "users", source)

	alice := session.Begin(context.Background())
	bob := session.Begin(context.Background())

	a1, err := users.FindByID(alice, user.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	a2, err := users.FindByID(alice, user.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	b1, err := users.FindByID(bob, user.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}

	if a1 != a2 {
		t.Error("expected one instance per session")
	}
	if a1 == b1 {
		t.Error("expected sessions not to share instances")
	}
	if *a1 != *b1 {
		t.Errorf("expected equal state across sessions, got %+v and %+v", a1, b1)
	}

	// the second session decodes the cached record
	if calls := source.getCallCount("FindByID"); calls != 1 {
		t.Errorf("expected 1 source read, got %d", calls)
	}
}

func TestIntegration_WritesAcrossSessions(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	source := newMockUserSource()
	users := NewStore[User](container, "users", source)

	writer := session.Begin(context.Background())
	reader := session.Begin(context.Background())

	created := &User{ID: primitive.NewObjectID(), Name: "Grace"}
	if err := users.Save(writer, created); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	seen, err := users.FindByID(reader, created.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if seen.Name != "Grace" {
		t.Errorf("expected the saved record, got %+v", seen)
	}

	created.Name = "Grace Hopper"
	if err := users.Save(writer, created); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// the reader keeps its instance; a reset session sees the update
	stale, err := users.FindByID(reader, created.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if stale != seen {
		t.Error("expected the reader's pooled instance")
	}
	if _, err := container.Sessions().Reset(reader); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	fresh, err := users.FindByID(reader, created.ID)
	if err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if fresh.Name != "Grace Hopper" {
		t.Errorf("expected the updated record after reset, got %q", fresh.Name)
	}

	if err := users.Delete(writer, created.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := users.FindByID(session.Begin(context.Background()), created.ID); !errors.Is(err, repositoryidentity.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIntegration_UncachedSource(t *testing.T) {
	config := DefaultConfig()
	config.CacheRecords = false
	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	source := newMockUserSource()
	user := User{ID: primitive.NewObjectID(), Name: "Linus"}
	source.put(t, user)
	users := NewStore[User](container, "users", source)

	for i := 0; i < 3; i++ {
		if _, err := users.FindByID(session.Begin(context.Background()), user.ID); err != nil {
			t.Fatalf("FindByID() failed: %v", err)
		}
	}
	if calls := source.getCallCount("FindByID"); calls != 3 {
		t.Errorf("expected every session to reach the source, got %d", calls)
	}
}

func TestIntegration_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	container, err := NewContainerWithDefaults(WithRegisterer(reg))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	source := newMockUserSource()
	user := User{ID: primitive.NewObjectID(), Name: "Barbara"}
	source.put(t, user)
	users := NewStore[User](container, "users", source)

	ctx := session.Begin(context.Background())
	if _, err := users.FindByID(ctx, user.ID); err != nil {
		t.Fatalf("FindByID() failed: %v", err)
	}
	if err := users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	// miss, decode, register and invalidate
	count, err := testutil.GatherAndCount(reg, "identity_pool_events_total")
	if err != nil {
		t.Fatalf("GatherAndCount() failed: %v", err)
	}
	if count < 4 {
		t.Errorf("expected at least 4 event series, got %d", count)
	}
}

// TestConcurrentAccess tests concurrent sessions reading through one container
func TestConcurrentAccess(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	source := newMockUserSource()
	ids := make([]primitive.ObjectID, 50)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
		source.put(t, User{ID: ids[i], Name: fmt.Sprintf("User %d", i)})
	}
	users := NewStore[User](container, "users", source)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := session.Begin(context.Background())
			defer container.Sessions().Release(ctx)

			seen := make(map[primitive.ObjectID]*User, len(ids))
			for round := 0; round < 2; round++ {
				for _, id := range ids {
					u, err := users.FindByID(ctx, id)
					if err != nil {
						errs <- err
						return
					}
					if prev, ok := seen[id]; ok && prev != u {
						errs <- fmt.Errorf("unstable instance for %s", id.Hex())
						return
					}
					seen[id] = u
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if n := container.Sessions().Len(); n != 0 {
		t.Errorf("expected all sessions released, got %d", n)
	}
}
