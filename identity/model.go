package identity

import (
	"bytes"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultIDField is the record field holding the entity identifier.
const DefaultIDField = "_id"

// ID identifies a persisted entity.
type ID = primitive.ObjectID

// Model is implemented by every pooled entity. Implementations must be
// pointer types; the pool tracks them by pointer identity.
type Model interface {
	ModelID() ID
}

// Entity constrains generic pool operations to pointer types whose
// pointee is T and which expose an identifier.
type Entity[T any] interface {
	*T
	Model
}

// CompareIDs orders identifiers by their byte representation.
func CompareIDs(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// ExtractID reads the identifier stored under field in raw.
func ExtractID(raw bson.Raw, field string) (ID, error) {
	val, err := raw.LookupErr(field)
	if err != nil {
		return ID{}, &MissingIdentifierError{
			Key:      field,
			Expected: bsontype.ObjectID.String(),
			Got:      "missing",
		}
	}

	id, ok := val.ObjectIDOK()
	if !ok {
		return ID{}, &MissingIdentifierError{
			Key:      field,
			Expected: bsontype.ObjectID.String(),
			Got:      val.Type.String(),
		}
	}

	return id, nil
}
