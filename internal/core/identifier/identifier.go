// Package identifier generates the lexically sortable ids used for sessions,
// findings, strategies and log correlation. Ids are 26-character ULIDs over
// Crockford base32, monotonic within the process.
package identifier

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// Generate returns a new ULID. Monotonic entropy guarantees that two ids
// generated within the same millisecond still sort in generation order.
func Generate() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// GenerateWithPrefix returns "<prefix>_<ulid>" for ids that should be
// recognizable in logs, like approval token ids.
func GenerateWithPrefix(prefix string) string {
	return prefix + "_" + Generate()
}

// IsValid reports whether s is a well-formed ULID. It is a pure format
// check and says nothing about whether the id was ever issued.
func IsValid(s string) bool {
	if len(s) != ulid.EncodedSize || s != strings.ToUpper(s) {
		return false
	}
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// ExtractTimestamp returns the creation time encoded in the id, or nil for
// malformed input. It never panics.
func ExtractTimestamp(s string) *time.Time {
	// tolerate prefixed ids
	if idx := strings.LastIndex(s, "_"); idx >= 0 {
		s = s[idx+1:]
	}
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return nil
	}
	t := ulid.Time(id.Time())
	return &t
}
