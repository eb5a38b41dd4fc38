// Package cache stores extracted class models keyed by source content, so
// unchanged files are not parsed again.
package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/jdg-tools/jdg/internal/parser"
)

// Store is a content-addressed ClassModel cache. Implementations return
// copies, so callers may modify what they get.
type Store interface {
	// Get returns the model stored under key. A miss is not an error.
	Get(key string) (*parser.ClassModel, bool, error)

	// Put stores model under key, replacing any previous value.
	Put(key string, model *parser.ClassModel) error

	// Close releases resources held by the store.
	Close() error
}

// Key derives the cache key for a file's content parsed with the given
// parser options fingerprint. The file path is not part of the key.
func Key(content []byte, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil))
}
