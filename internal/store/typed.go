package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReadAll decodes every element of a collection into T. Any element that
// does not decode makes the whole collection read as empty with a *DecodeError.
func ReadAll[T any](ctx context.Context, s *RecordStore, key string) ([]T, error) {
	seq, err := s.Read(ctx, key)
	if err != nil {
		return []T{}, err
	}
	out, err := decodeAll[T](seq)
	if err != nil {
		return []T{}, s.decodeFailed(key, err)
	}
	return out, nil
}

// WriteAll replaces a collection with items.
func WriteAll[T any](ctx context.Context, s *RecordStore, key string, items []T) error {
	seq, err := encodeAll(items)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Write(ctx, key, seq)
}

// Append adds item to the end of a collection and writes the whole collection back.
// An undecodable collection is replaced by a collection holding only item.
func Append[T any](ctx context.Context, s *RecordStore, key string, item T) error {
	encoded, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Update(ctx, key, func(seq []json.RawMessage) ([]json.RawMessage, error) {
		if _, err := decodeAll[T](seq); err != nil {
			s.decodeFailed(key, err)
			seq = []json.RawMessage{}
		}
		return append(seq, encoded), nil
	})
}

func decodeAll[T any](seq []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(seq))
	for i, raw := range seq {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func encodeAll[T any](items []T) ([]json.RawMessage, error) {
	seq := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		seq = append(seq, raw)
	}
	return seq, nil
}
