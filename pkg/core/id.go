package core

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces note ids.
type IDGenerator interface {
	NewID(now time.Time) string
}

// ID schemes understood by NewIDGenerator.
const (
	IDSchemeTimestamp = "timestamp"
	IDSchemeUUID      = "uuid"
)

// NewIDGenerator returns the generator for scheme. Unknown schemes fall back
// to timestamps.
func NewIDGenerator(scheme string) IDGenerator {
	if scheme == IDSchemeUUID {
		return UUIDGenerator{}
	}
	return &TimestampGenerator{}
}

// TimestampGenerator derives ids from the UTC time at microsecond
// resolution (YYYYMMDDhhmmssffffff). Ids are strictly increasing within a
// process: when the clock does not advance past the previous id, the
// previous instant plus one microsecond is used instead.
type TimestampGenerator struct {
	mu   sync.Mutex
	last time.Time
}

// NewID implements IDGenerator.
func (g *TimestampGenerator) NewID(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := now.UTC().Truncate(time.Microsecond)
	if !t.After(g.last) {
		t = g.last.Add(time.Microsecond)
	}
	g.last = t
	return strings.Replace(t.Format("20060102150405.000000"), ".", "", 1)
}

// UUIDGenerator issues time-ordered UUIDv7 ids.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID(time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidID reports whether id can name a stored note. Ids are restricted to
// [A-Za-z0-9._-] and may not start with a dot, which keeps them inside the
// notes directory.
func ValidID(id string) bool {
	if id == "" || id[0] == '.' {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
