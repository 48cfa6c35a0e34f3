package repositoryidentity

import (
	"context"
	"errors"

	"github.com/goliatone/go-repository-identity/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ RecordSource = (*MongoSource)(nil)

// MongoSource reads and writes raw records in a MongoDB collection keyed by "_id".
type MongoSource struct {
	collection *mongo.Collection
}

// NewMongoSource creates a RecordSource backed by collection.
func NewMongoSource(collection *mongo.Collection) *MongoSource {
	return &MongoSource{collection: collection}
}

func byID(id identity.ID) bson.D {
	return bson.D{{Key: identity.DefaultIDField, Value: id}}
}

// FindByID implements RecordSource.
func (m *MongoSource) FindByID(ctx context.Context, id identity.ID) (bson.Raw, error) {
	raw, err := m.collection.FindOne(ctx, byID(id)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Find implements RecordSource. A nil filter matches every document.
func (m *MongoSource) Find(ctx context.Context, filter any) ([]bson.Raw, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []bson.Raw
	for cursor.Next(ctx) {
		// cursor.Current is reused by the next call to Next
		records = append(records, append(bson.Raw(nil), cursor.Current...))
	}
	return records, cursor.Err()
}

// Upsert implements RecordSource.
func (m *MongoSource) Upsert(ctx context.Context, id identity.ID, raw bson.Raw) error {
	_, err := m.collection.ReplaceOne(ctx, byID(id), raw, options.Replace().SetUpsert(true))
	return err
}

// DeleteByID implements RecordSource.
func (m *MongoSource) DeleteByID(ctx context.Context, id identity.ID) error {
	res, err := m.collection.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
