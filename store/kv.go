// Package store wraps the generic storage.Database key-value backend with
// JSON marshaling and namespaced key construction, the way
// native/reputation's storage.go builds per-record keys over a raw KV
// interface. Every core component (token, treasury, curve, factory, oracle)
// gets its own Namespace so keys never collide.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nilecore/soulcore/storage"
)

// KV is a namespaced, JSON-marshaling view over a storage.Database.
type KV struct {
	db     storage.Database
	prefix string
}

// Open returns a KV bound to db, scoping every key under the given namespace.
func Open(db storage.Database, namespace string) *KV {
	return &KV{db: db, prefix: namespace}
}

func (kv *KV) key(parts ...string) []byte {
	key := kv.prefix
	for _, p := range parts {
		key += "/" + p
	}
	return []byte(key)
}

// Put JSON-encodes value and stores it under the namespaced key built from parts.
func (kv *KV) Put(value interface{}, parts ...string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", kv.key(parts...), err)
	}
	return kv.db.Put(kv.key(parts...), encoded)
}

// Get decodes the value stored under the namespaced key built from parts into out.
// It returns (false, nil) when the key is absent.
func (kv *KV) Get(out interface{}, parts ...string) (bool, error) {
	raw, err := kv.db.Get(kv.key(parts...))
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", kv.key(parts...), err)
	}
	return true, nil
}

// Has reports whether a record exists under the namespaced key.
func (kv *KV) Has(parts ...string) (bool, error) {
	return kv.db.Has(kv.key(parts...))
}

// Delete removes the record stored under the namespaced key, if any.
func (kv *KV) Delete(parts ...string) error {
	return kv.db.Delete(kv.key(parts...))
}

// HexBytes renders b as a lowercase hex string suitable for use as a key part,
// mirroring the fmt.Sprintf("%x", ...) convention used throughout the teacher's
// native packages.
func HexBytes(b []byte) string {
	return hex.EncodeToString(b)
}
