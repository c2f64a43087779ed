// Package id provides centralized ID generation for the bridge.
//
// Two formats are used:
//   - Correlation tokens: random 128-bit UUIDv4 strings pairing an invoke
//     request with its eventual response. Tokens are unguessable and carry
//     no ordering.
//   - Entity IDs: prefixed ULIDs (surf_*, sess_*) that sort by creation time
//     and make logs readable.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Token correlates an invoke request with its response.
type Token string

// SurfaceID identifies an embedded surface
type SurfaceID string

// SessionID identifies a host link connection
type SessionID string

const (
	SurfacePrefix = "surf"
	SessionPrefix = "sess"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewToken generates a correlation token from 122 random bits.
// uuid.New panics only if the system entropy source fails.
func NewToken() Token {
	return Token(uuid.New().String())
}

// NewSurfaceID generates a new surface ID
func NewSurfaceID() SurfaceID {
	return SurfaceID(Default().GenerateWithPrefix(SurfacePrefix))
}

// NewSessionID generates a new host link session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

func (t Token) String() string     { return string(t) }
func (id SurfaceID) String() string { return string(id) }
func (id SessionID) String() string { return string(id) }

// IsToken reports whether s is a well-formed correlation token.
func IsToken(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.Version() == 4
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the timestamp from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
