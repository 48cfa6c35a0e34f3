package identity

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Decoder builds a new instance from a raw record.
type Decoder[T any, PT Entity[T]] func(raw bson.Raw) (PT, error)

// DecodeBSON is the default Decoder. It unmarshals raw into a new T, so
// types implementing bson.Unmarshaler control their own decoding.
func DecodeBSON[T any, PT Entity[T]](raw bson.Raw) (PT, error) {
	instance := PT(new(T))
	if err := bson.Unmarshal(raw, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Materialize returns the pooled instance for raw's identifier, decoding and
// registering a new one with DecodeBSON only when no live instance exists.
func Materialize[T any, PT Entity[T]](p *Pool, raw bson.Raw) (PT, error) {
	return MaterializeWith[T, PT](p, raw, DecodeBSON[T, PT])
}

// MaterializeWith is Materialize with a caller supplied decoder. Decoder
// errors are returned unchanged. A live hit never calls decode. A decoded
// instance whose ModelID differs from the record's identifier is rejected
// with a *MissingIdentifierError and not pooled.
func MaterializeWith[T any, PT Entity[T]](p *Pool, raw bson.Raw, decode Decoder[T, PT]) (PT, error) {
	id, err := ExtractID(raw, p.cfg.IDField)
	if err != nil {
		return nil, err
	}

	if existing, ok := Lookup[T, PT](p, id); ok {
		p.observer.Observe(EventHit, 1)
		return existing, nil
	}
	p.observer.Observe(EventMiss, 1)

	instance, err := decode(raw)
	if err != nil {
		return nil, err
	}
	p.observer.Observe(EventDecode, 1)
	p.logger.Debug("decoded instance", zap.String("id", id.Hex()))

	if decoded := instance.ModelID(); decoded != id {
		return nil, &MissingIdentifierError{
			Key:      p.cfg.IDField,
			Expected: id.Hex(),
			Got:      decoded.Hex(),
		}
	}

	if err := Register[T, PT](p, instance); err != nil {
		return nil, err
	}
	return instance, nil
}
