package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"labcare/internal/domain"
	"labcare/internal/metrics"

	"github.com/rs/zerolog"
)

// RecordStore keeps named JSON collections in a key-value backend.
// Every write replaces the whole stored value.
type RecordStore struct {
	kv        domain.KeyValueStore
	namespace string
	logger    *zerolog.Logger

	// serializes read-modify-write cycles issued through Update
	mu sync.Mutex
}

func New(kv domain.KeyValueStore, namespace string, logger *zerolog.Logger) *RecordStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RecordStore{kv: kv, namespace: namespace, logger: logger}
}

func (s *RecordStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// Read returns the sequence stored under key. An absent key yields an empty
// sequence. A value that is not a JSON array yields an empty sequence and a
// *DecodeError.
func (s *RecordStore) Read(ctx context.Context, key string) ([]json.RawMessage, error) {
	raw, found, err := s.kv.Get(ctx, s.key(key))
	if err != nil {
		return []json.RawMessage{}, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !found || raw == "" {
		return []json.RawMessage{}, nil
	}

	var seq []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &seq); err != nil {
		return []json.RawMessage{}, s.decodeFailed(key, err)
	}
	if seq == nil {
		seq = []json.RawMessage{}
	}
	return seq, nil
}

// Write replaces the sequence stored under key.
func (s *RecordStore) Write(ctx context.Context, key string, seq []json.RawMessage) error {
	if seq == nil {
		seq = []json.RawMessage{}
	}
	data, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, s.key(key), string(data)); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Update runs a read-modify-write cycle on one collection. Cycles issued
// through the same RecordStore do not interleave. A decode error on the read
// side is logged and the cycle continues from an empty sequence.
func (s *RecordStore) Update(ctx context.Context, key string, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.Read(ctx, key)
	if err != nil && !IsDecodeError(err) {
		return err
	}
	next, err := fn(seq)
	if err != nil {
		return err
	}
	return s.Write(ctx, key, next)
}

// ReadValue decodes a single JSON value into v. It reports false when the key is absent.
func (s *RecordStore) ReadValue(ctx context.Context, key string, v interface{}) (bool, error) {
	raw, found, err := s.kv.Get(ctx, s.key(key))
	if err != nil {
		return false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !found || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, s.decodeFailed(key, err)
	}
	return true, nil
}

func (s *RecordStore) WriteValue(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, s.key(key), string(data)); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// ReadRaw returns the unencoded string stored under key.
func (s *RecordStore) ReadRaw(ctx context.Context, key string) (string, bool, error) {
	raw, found, err := s.kv.Get(ctx, s.key(key))
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return raw, found, nil
}

func (s *RecordStore) WriteRaw(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, s.key(key), value); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *RecordStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, s.key(key)); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *RecordStore) decodeFailed(key string, err error) error {
	metrics.IncDecodeError(key)
	s.logger.Warn().Err(err).Str("key", key).Msg("stored value is not valid JSON, treating as empty")
	return &DecodeError{Key: key, Err: err}
}

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var stErr *StorageError
	return errors.As(err, &stErr)
}
