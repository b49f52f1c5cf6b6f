// Package id generates identifiers used across the docs service.
//
// Document identifiers are UUID v4 so they are stable across restarts and
// safe to embed in chunk keys. Request identifiers are ULIDs so log lines
// for one request sort chronologically.
package id

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewDocumentID returns a new UUID v4 document identifier.
func NewDocumentID() string {
	return uuid.NewString()
}

// NewRequestID returns a new ULID request identifier.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// IsValidDocumentID reports whether s is a well-formed UUID.
func IsValidDocumentID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ChunkKey builds the deterministic key for one chunk of a document.
// Re-ingesting the same document produces the same keys, so index writes
// overwrite stale chunks instead of duplicating them.
func ChunkKey(documentID string, seq int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, seq)
}
