package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// keyFile is the on-disk shape of the allowlist.
type keyFile struct {
	Keys []string `yaml:"keys"`
}

// KeySet is an immutable set of accepted bearer keys.
type KeySet struct {
	keys [][]byte
}

// NewKeySet builds a set from keys, ignoring empty strings and duplicates.
func NewKeySet(keys ...string) *KeySet {
	seen := make(map[string]struct{}, len(keys))
	ks := &KeySet{keys: make([][]byte, 0, len(keys))}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ks.keys = append(ks.keys, []byte(k))
	}
	return ks
}

// Len returns the number of distinct keys. A nil set is empty.
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Contains reports whether key is in the set. Every entry is compared so the
// time taken does not depend on which key matched.
func (s *KeySet) Contains(key string) bool {
	if s == nil || key == "" {
		return false
	}
	candidate := []byte(key)
	found := 0
	for _, k := range s.keys {
		found |= subtle.ConstantTimeCompare(k, candidate)
	}
	return found == 1
}

// LoadKeySet reads the allowlist at path. A missing file is not an error: it
// is logged and an empty set is returned. An unreadable or malformed file is.
func LoadKeySet(path string) (*KeySet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("auth: key file not found, all restart requests will be rejected", "path", path)
		return NewKeySet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: read key file %q: %w", path, err)
	}

	var kf keyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("auth: parse key file %q: %w", path, err)
	}

	ks := NewKeySet(kf.Keys...)
	slog.Info("auth: key file loaded", "path", path, "keys", ks.Len())
	return ks, nil
}

// Keys is the live KeySet shared between the HTTP handlers and the watcher.
// The zero value holds an empty set.
type Keys struct {
	p atomic.Pointer[KeySet]
}

// NewKeys returns a holder initialised with set.
func NewKeys(set *KeySet) *Keys {
	k := &Keys{}
	k.Store(set)
	return k
}

// Load returns the current set; never nil.
func (k *Keys) Load() *KeySet {
	if s := k.p.Load(); s != nil {
		return s
	}
	return NewKeySet()
}

// Store replaces the current set.
func (k *Keys) Store(set *KeySet) {
	if set == nil {
		set = NewKeySet()
	}
	k.p.Store(set)
}
