// ABOUTME: HTTP middleware applying the gate to protected endpoints
// ABOUTME: Redirects to the refresh endpoint on lapsed sessions and maps other outcomes to status codes

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/token"
)

// Error details written by the middleware.
const (
	DetailForbidden = "You do not have permission"
	DetailInternal  = "Internal error"
)

// ErrorBody is the JSON shape of every auth error response.
type ErrorBody struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Status: "Error", Detail: detail})
}

// Middleware creates an HTTP middleware that runs the gate on every request.
// Authorized requests continue with the Session in their context.
func (g *Gate) Middleware(requireAdmin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Authorize(r.Context(), CredentialsFromRequest(r), requireAdmin)
			if !d.Allowed() {
				g.WriteDecision(w, r, d)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), d.Session)))
		})
	}
}

// WriteDecision renders a decision that did not allow the request: a redirect
// to the refresh endpoint, or a JSON error with the matching status.
// Handlers using the Validate form call it directly.
func (g *Gate) WriteDecision(w http.ResponseWriter, r *http.Request, d Decision) {
	switch d.Outcome {
	case Authorized:
		return
	case NeedsRefresh:
		http.Redirect(w, r, RefreshURL(r.URL.RequestURI()), http.StatusTemporaryRedirect)
	case Forbidden:
		g.logger.Debug("admin role required", "user_id", d.Session.User.ID, "path", r.URL.Path)
		writeJSONError(w, http.StatusForbidden, DetailForbidden)
	case Unauthorized:
		g.logger.Debug("unauthorized request", "reason", unauthorizedReason(d.Err), "path", r.URL.Path, "remote", r.RemoteAddr)
		writeJSONError(w, http.StatusUnauthorized, "Auth error: "+unauthorizedReason(d.Err))
	default:
		g.logger.Error("authorization failed", "error", d.Err, "path", r.URL.Path)
		writeJSONError(w, http.StatusInternalServerError, DetailInternal)
	}
}

// RequireSession wraps h with the gate. Shorthand for Middleware(requireAdmin)(h).
func (g *Gate) RequireSession(requireAdmin bool, h http.HandlerFunc) http.Handler {
	return g.Middleware(requireAdmin)(h)
}

func unauthorizedReason(err error) string {
	if errors.Is(err, ErrUserNotFound) {
		return "user not found"
	}
	switch token.Kind(err) {
	case "malformed":
		return "malformed token"
	case "bad_signature":
		return "invalid signature"
	case "wrong_use":
		return "wrong token type"
	default:
		return "invalid token"
	}
}
