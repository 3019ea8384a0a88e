// ABOUTME: Hook interface through which the auth layer reports what it decided
// ABOUTME: The metrics package implements it; NopObserver is the default

package auth

import "github.com/Wox1e/LibraryAPI/internal/token"

// Observer receives auth events. Implementations must be safe for concurrent use.
type Observer interface {
	// TokenIssued is called once per minted token.
	TokenIssued(use token.Use)
	// TokenVerified is called for every verification with token.Kind of the result.
	TokenVerified(use token.Use, result string)
	// GateDecision is called for every gate decision.
	GateDecision(outcome Outcome)
	// RefreshAttempt is called once per refresh request with its result label.
	RefreshAttempt(result string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) TokenIssued(token.Use)           {}
func (NopObserver) TokenVerified(token.Use, string) {}
func (NopObserver) GateDecision(Outcome)            {}
func (NopObserver) RefreshAttempt(string)           {}
