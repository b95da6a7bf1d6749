// Package gameid generates identifiers for game sessions. IDs are UUIDv7
// values encoded as 26 lowercase Crockford base32 characters, so they sort by
// creation time.
package gameid

import (
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates game IDs. A nil entropy source uses crypto/rand.
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a generator reading randomness from entropy
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new game ID
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game ID. It panics only if the entropy source fails.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("gameid: failed to generate id: " + err.Error())
	}
	return encoding.EncodeToString(id[:])
}

// Validate checks that id is 26 characters from the base32 alphabet
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game ID must be exactly 26 characters, got %d", len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	if _, err := encoding.DecodeString(id); err != nil {
		return fmt.Errorf("game ID does not decode: %w", err)
	}
	return nil
}

// Short returns the last eight characters of id, enough to tell concurrent
// games apart in logs.
func Short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
