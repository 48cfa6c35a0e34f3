package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadRecords loads a JSON array of relaxed extended JSON documents and
// returns them as raw BSON records, in file order.
func LoadRecords(t testing.TB, path string) []bson.Raw {
	t.Helper()

	var docs []json.RawMessage
	if err := json.Unmarshal(LoadFixture(t, path), &docs); err != nil {
		t.Fatalf("failed to unmarshal record fixture from %s: %v", path, err)
	}

	records := make([]bson.Raw, 0, len(docs))
	for i, doc := range docs {
		var d bson.D
		if err := bson.UnmarshalExtJSON(doc, false, &d); err != nil {
			t.Fatalf("failed to parse record %d in %s: %v", i, path, err)
		}
		records = append(records, Record(t, d))
	}

	return records
}

// Record marshals doc (a bson.M, bson.D or tagged struct) into a raw record.
func Record(t testing.TB, doc any) bson.Raw {
	t.Helper()

	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal record: %v", err)
	}

	return bson.Raw(data)
}

// Collect runs the garbage collector until reclaimed reports true. It fails
// the test if the object is still reachable after a bounded number of cycles.
// Callers must not hold strong references to the object being collected.
func Collect(t testing.TB, reclaimed func() bool) {
	t.Helper()

	for i := 0; i < 10; i++ {
		runtime.GC()
		if reclaimed() {
			return
		}
	}

	t.Fatalf("object was not reclaimed after forced garbage collection")
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
