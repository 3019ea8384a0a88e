// ABOUTME: Header, Claims and Subject types carried inside signed tokens
// ABOUTME: Claims embed jwt.RegisteredClaims for iss/iat/exp/jti handling

package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssuerName is the fixed iss claim of every token minted by this service.
const IssuerName = "Library API Authorization"

// Header is the first token segment. Its shape is fixed; Verify ignores Algorithm.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// DefaultHeader returns the header written on every issued token.
func DefaultHeader() Header {
	return Header{Algorithm: jwt.SigningMethodHS256.Alg(), Type: "JWT"}
}

// Use distinguishes access tokens from refresh tokens.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

// Subject is the caller-supplied part of the claims: who the token is for and
// the role they held when it was minted.
type Subject struct {
	UserID  int64
	IsAdmin bool
}

// Claims is the signed payload of a token.
type Claims struct {
	UserID  int64 `json:"userId"`
	IsAdmin bool  `json:"is_admin"`
	Use     Use   `json:"token_use"`
	jwt.RegisteredClaims
}

// Subject returns the subject part of the claims.
func (c *Claims) Subject() Subject {
	return Subject{UserID: c.UserID, IsAdmin: c.IsAdmin}
}

// ExpiresAtTime returns the exp claim, or the zero time if it is absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Pair is the result of a login, registration or refresh: one access token and
// one refresh token minted for the same subject at the same instant.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
