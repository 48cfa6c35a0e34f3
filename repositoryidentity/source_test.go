package repositoryidentity

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/goliatone/go-repository-identity/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cat struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Age  int                `bson:"age"`
}

func (c *cat) ModelID() identity.ID { return c.ID }

// memorySource is an in-memory RecordSource that records every call.
type memorySource struct {
	mu        sync.Mutex
	calls     []string
	records   map[identity.ID]bson.Raw
	upsertErr error
}

func newMemorySource(records ...bson.Raw) *memorySource {
	m := &memorySource{records: make(map[identity.ID]bson.Raw)}
	for _, raw := range records {
		id, err := identity.ExtractID(raw, identity.DefaultIDField)
		if err != nil {
			panic(err)
		}
		m.records[id] = raw
	}
	return m
}

func (m *memorySource) recordCall(method string) {
	m.calls = append(m.calls, method)
}

func (m *memorySource) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memorySource) clearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *memorySource) count(method string) int {
	n := 0
	for _, call := range m.getCalls() {
		if call == method {
			n++
		}
	}
	return n
}

func (m *memorySource) FindByID(ctx context.Context, id identity.ID) (bson.Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("FindByID")

	raw, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

// Find accepts a nil filter or a func(bson.Raw) bool and returns matches
// ordered by id.
func (m *memorySource) Find(ctx context.Context, filter any) ([]bson.Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Find")

	match := func(bson.Raw) bool { return true }
	if filter != nil {
		fn, ok := filter.(func(bson.Raw) bool)
		if !ok {
			return nil, errors.New("memory source: unsupported filter")
		}
		match = fn
	}

	ids := make([]identity.ID, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, identity.CompareIDs)

	var out []bson.Raw
	for _, id := range ids {
		if raw := m.records[id]; match(raw) {
			out = append(out, raw)
		}
	}
	return out, nil
}

func (m *memorySource) Upsert(ctx context.Context, id identity.ID, raw bson.Raw) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Upsert")

	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[id] = raw
	return nil
}

func (m *memorySource) DeleteByID(ctx context.Context, id identity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("DeleteByID")

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}
