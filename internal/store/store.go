package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("store: key not found")

// KVStore is the device-local string key/value storage every component sits
// on. Values are JSON-encoded by the callers; the store itself only moves
// strings. All keys live in one flat namespace.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key starting with prefix. An empty prefix
	// enumerates the whole namespace.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// LoadJSON decodes the value under key into out. A missing key is not an
// error; it reports found=false and leaves out untouched.
func LoadJSON(ctx context.Context, s KVStore, key string, out interface{}) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, errors.Wrapf(err, "decode value at %q", key)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s KVStore, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode value for %q", key)
	}
	return s.Set(ctx, key, string(raw))
}
