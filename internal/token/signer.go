// ABOUTME: HMAC-SHA256 signer with a pinned algorithm and process-wide key
// ABOUTME: Wraps jwt.SigningMethodHS256 so the header's alg is never trusted

package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret size in bytes.
const MinSecretLength = 32

// Signer signs and verifies the "header.claims" signing input. The key is
// copied at construction and never mutated, so a Signer is safe for concurrent use.
type Signer struct {
	key    []byte
	method *jwt.SigningMethodHMAC
}

// NewSigner creates a Signer for the given secret.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSecret, len(secret), MinSecretLength)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{key: key, method: jwt.SigningMethodHS256}, nil
}

// Algorithm returns the pinned algorithm name.
func (s *Signer) Algorithm() string {
	return s.method.Alg()
}

// Sign returns the signature over signingInput.
func (s *Signer) Sign(signingInput string) ([]byte, error) {
	sig, err := s.method.Sign(signingInput, s.key)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return sig, nil
}

// Verify reports whether sig is the signature of signingInput. The comparison
// is constant time.
func (s *Signer) Verify(signingInput string, sig []byte) bool {
	return s.method.Verify(signingInput, sig, s.key) == nil
}
