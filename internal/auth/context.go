// ABOUTME: Session context for tracking identity through request handlers
// ABOUTME: Provides WithSession/SessionFromContext for propagating the resolved session

package auth

import (
	"context"
)

// sessionContextKey is the key type for storing Session in context.Context.
type sessionContextKey struct{}

// WithSession returns a new context with the Session attached.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext retrieves the Session from the context, returning nil if not present.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}

// MustSessionFromContext retrieves the Session from the context, panicking if not present.
func MustSessionFromContext(ctx context.Context) *Session {
	s := SessionFromContext(ctx)
	if s == nil {
		panic("auth: Session not found in context")
	}
	return s
}
