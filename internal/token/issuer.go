// ABOUTME: Mints access and refresh tokens for a subject
// ABOUTME: Reserved claims are set after the subject so callers cannot override them

package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer builds and signs tokens. IssuePair is the only way the service mints
// tokens for a session.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// NewIssuer creates an Issuer with the given access and refresh lifetimes.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	o := applyOptions(opts)
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        o.now,
		newID:      o.newID,
	}
}

// Issue mints a single token for subject that expires lifetime from now.
func (i *Issuer) Issue(subject Subject, use Use, lifetime time.Duration) (string, error) {
	tok, _, err := i.issueAt(subject, use, lifetime, i.now())
	return tok, err
}

// IssuePair mints an access token and a refresh token for subject. Both carry
// the same subject claims and issued-at; only their expiries differ.
func (i *Issuer) IssuePair(subject Subject) (*Pair, error) {
	now := i.now()

	access, accessExp, err := i.issueAt(subject, UseAccess, i.accessTTL, now)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, refreshExp, err := i.issueAt(subject, UseRefresh, i.refreshTTL, now)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) issueAt(subject Subject, use Use, lifetime time.Duration, now time.Time) (string, time.Time, error) {
	claims := &Claims{
		UserID:  subject.UserID,
		IsAdmin: subject.IsAdmin,
	}
	// Reserved claims last.
	claims.Use = use
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    IssuerName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		ID:        i.newID(),
	}

	tok, err := i.codec.Encode(DefaultHeader(), claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, claims.ExpiresAt.Time, nil
}

// Option configures an Issuer or Verifier.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock sets the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator sets the jti generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
