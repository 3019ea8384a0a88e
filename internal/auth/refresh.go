// ABOUTME: The refresh endpoint, sole consumer of refresh tokens
// ABOUTME: Re-verifies, re-resolves the user and mints a new pair; redirects back when asked

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Wox1e/LibraryAPI/internal/token"
)

// RefreshPath is where the middleware sends callers whose access token lapsed.
const RefreshPath = "/auth/refresh"

// RedirectParam names the query parameter carrying the original path.
const RedirectParam = "redirected_from"

// Refresh error details returned to the caller.
const (
	DetailNoRefreshToken      = "Cannot find refresh token. Login or register via /auth/login or /auth/register"
	DetailInvalidRefreshToken = "Invalid refresh token"
	DetailUserNotFound        = "User not found"
)

// RefreshedMessage is the plain body returned when no redirect target is given.
const RefreshedMessage = "Your tokens were refreshed"

// Refresh verifies the refresh token in creds, reloads its user and mints a new
// pair for them. It never accepts an access token and never revokes anything.
func (g *Gate) Refresh(ctx context.Context, creds Credentials) (*token.Pair, *Session, error) {
	session, err := g.resolver.ResolveRefresh(ctx, creds.RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	pair, err := g.issuer.IssuePair(token.Subject{UserID: session.User.ID, IsAdmin: session.User.IsAdmin})
	if err != nil {
		return nil, nil, fmt.Errorf("issuing token pair: %w", err)
	}
	g.observer.TokenIssued(token.UseAccess)
	g.observer.TokenIssued(token.UseRefresh)
	return pair, session, nil
}

// RefreshHandler serves the refresh endpoint for any method.
func (g *Gate) RefreshHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pair, session, err := g.Refresh(r.Context(), CredentialsFromRequest(r))
		if err != nil {
			result, status, detail := classifyRefreshError(err)
			g.observer.RefreshAttempt(result)
			if status == http.StatusInternalServerError {
				g.logger.Error("refresh failed", "error", err)
			} else {
				g.logger.Debug("refresh rejected", "reason", result, "remote", r.RemoteAddr)
			}
			writeJSONError(w, status, detail)
			return
		}

		g.observer.RefreshAttempt("ok")
		SetTokenCookies(w, pair, g.secure)
		g.logger.Debug("tokens refreshed", "user_id", session.User.ID)

		if target, ok := SafeRedirectTarget(r.URL.Query().Get(RedirectParam)); ok {
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(RefreshedMessage))
	})
}

func classifyRefreshError(err error) (result string, status int, detail string) {
	switch {
	case errors.Is(err, ErrNoRefreshToken):
		return "missing", http.StatusUnauthorized, DetailNoRefreshToken
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found", http.StatusUnauthorized, DetailUserNotFound
	case errors.Is(err, token.ErrMalformedToken),
		errors.Is(err, token.ErrBadSignature),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrWrongTokenUse):
		return "invalid", http.StatusUnauthorized, DetailInvalidRefreshToken
	default:
		return "error", http.StatusInternalServerError, "Internal error"
	}
}

// RefreshURL builds the refresh redirect for a request that hit requestURI.
func RefreshURL(requestURI string) string {
	return RefreshPath + "?" + url.Values{RedirectParam: {requestURI}}.Encode()
}

// SafeRedirectTarget accepts only local absolute paths so the refresh
// endpoint cannot be used to bounce callers to another origin.
func SafeRedirectTarget(target string) (string, bool) {
	if target == "" || !strings.HasPrefix(target, "/") {
		return "", false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" || u.Path == RefreshPath {
		return "", false
	}
	return target, true
}
