// ABOUTME: Cookie transport for the token pair
// ABOUTME: Both cookies are always written or cleared together

package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

// SetTokenCookies writes both token cookies for pair.
func SetTokenCookies(w http.ResponseWriter, pair *token.Pair, secure bool) {
	http.SetCookie(w, tokenCookie(AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, secure))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, secure))
}

// ClearTokenCookies expires both token cookies.
func ClearTokenCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := tokenCookie(name, "", time.Unix(0, 0), secure)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func tokenCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// StartSession mints a fresh pair for user and sets both cookies.
// The subject's role comes from the user record.
func (g *Gate) StartSession(w http.ResponseWriter, user *store.User) (*token.Pair, error) {
	pair, err := g.issuer.IssuePair(token.Subject{UserID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		return nil, fmt.Errorf("issuing token pair: %w", err)
	}
	g.observer.TokenIssued(token.UseAccess)
	g.observer.TokenIssued(token.UseRefresh)

	SetTokenCookies(w, pair, g.secure)
	return pair, nil
}

// EndSession clears both cookies. Tokens already issued stay valid until
// they expire.
func (g *Gate) EndSession(w http.ResponseWriter) {
	ClearTokenCookies(w, g.secure)
}
