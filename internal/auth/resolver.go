// ABOUTME: Maps a verified token to the user it names
// ABOUTME: Verification failures and missing users come back as distinct error kinds

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

// ErrUserNotFound is returned when a valid token names a user that no longer exists.
var ErrUserNotFound = errors.New("user not found")

// ErrNoAccessToken is returned when the request carries no access token.
var ErrNoAccessToken = errors.New("no access token")

// ErrNoRefreshToken is returned when the request carries no refresh token.
var ErrNoRefreshToken = errors.New("no refresh token")

// TokenVerifier checks a token and requires it to have been minted for use.
type TokenVerifier interface {
	VerifyUse(tokenString string, use token.Use) (*token.Claims, error)
}

// UserLookup is the read-only user query the resolver needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
}

// Session is the request-scoped identity produced by a successful resolution.
// IsAdmin is the role claimed by the token, not re-read from the store.
type Session struct {
	User    *store.User
	IsAdmin bool
	Claims  *token.Claims
}

// Resolver verifies tokens and loads their users.
type Resolver struct {
	verifier TokenVerifier
	users    UserLookup
	observer Observer
	logger   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(verifier TokenVerifier, users UserLookup, observer Observer, logger *slog.Logger) *Resolver {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier: verifier,
		users:    users,
		observer: observer,
		logger:   logger.With("component", "auth"),
	}
}

// ResolveAccess resolves an access token. Refresh tokens are rejected.
func (r *Resolver) ResolveAccess(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrNoAccessToken
	}
	return r.resolve(ctx, tokenString, token.UseAccess)
}

// ResolveRefresh resolves a refresh token. Access tokens are rejected.
func (r *Resolver) ResolveRefresh(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrNoRefreshToken
	}
	return r.resolve(ctx, tokenString, token.UseRefresh)
}

func (r *Resolver) resolve(ctx context.Context, tokenString string, use token.Use) (*Session, error) {
	claims, err := r.verifier.VerifyUse(tokenString, use)
	r.observer.TokenVerified(use, token.Kind(err))
	if err != nil {
		if errors.Is(err, token.ErrBadSignature) || errors.Is(err, token.ErrWrongTokenUse) {
			r.logger.Warn("rejected token",
				"event", "token_tampering",
				"use", use,
				"reason", token.Kind(err),
			)
		}
		return nil, err
	}

	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		r.logger.Info("token names unknown user", "user_id", claims.UserID, "use", use)
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user %d: %w", claims.UserID, err)
	}

	return &Session{
		User:    user,
		IsAdmin: claims.IsAdmin,
		Claims:  claims,
	}, nil
}
