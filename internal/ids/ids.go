// Package ids generates identifiers for records and requests.
package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier for record keys and request ids.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewIdentityID returns a random UUID used as the public identity id.
func NewIdentityID() string {
	return uuid.NewString()
}

// IsRecordID reports whether s is a well formed record id.
func IsRecordID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
