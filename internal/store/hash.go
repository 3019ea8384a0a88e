// ABOUTME: Content hashes that keep authors and books unique
// ABOUTME: BLAKE3 over the identifying fields, hex-encoded to 32 characters

package store

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// hashLen is the digest length in bytes; hex form fits the 32-char column.
const hashLen = 16

// AuthorHash identifies an author by name and birth date.
func AuthorHash(name string, birthDate time.Time) string {
	return contentHash(name, formatDate(birthDate))
}

// BookHash identifies a book by name and publication date.
func BookHash(name string, publicationDate time.Time) string {
	return contentHash(name, formatDate(publicationDate))
}

func contentHash(parts ...string) string {
	hasher := blake3.New()
	for _, p := range parts {
		_, _ = hasher.Write([]byte(p))
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)[:hashLen])
}
