// ABOUTME: Per-request authorization decision over the caller's token cookies
// ABOUTME: Only a missing or expired access token leads to a refresh; everything else is terminal

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

// Outcome is the result of a gate decision.
type Outcome int

const (
	// Authorized means the request may proceed with the resolved session.
	Authorized Outcome = iota
	// NeedsRefresh means the access token is missing or expired and the caller
	// should go through the refresh endpoint.
	NeedsRefresh
	// Forbidden means the caller is authenticated but lacks the admin role.
	Forbidden
	// Unauthorized means the credentials can never succeed.
	Unauthorized
	// Failed means the decision could not be made, e.g. the store is down.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Authorized:
		return "authorized"
	case NeedsRefresh:
		return "needs_refresh"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cookie names carrying the token pair.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Credentials are the raw tokens presented by a caller. Empty means absent.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// CredentialsFromRequest reads the token cookies from r.
func CredentialsFromRequest(r *http.Request) Credentials {
	var c Credentials
	if ck, err := r.Cookie(AccessTokenCookie); err == nil {
		c.AccessToken = ck.Value
	}
	if ck, err := r.Cookie(RefreshTokenCookie); err == nil {
		c.RefreshToken = ck.Value
	}
	return c
}

// Decision is the gate's verdict. Session is set only when Outcome is Authorized
// or Forbidden. Err carries the underlying reason for every other outcome.
type Decision struct {
	Outcome Outcome
	Session *Session
	Err     error
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Authorized
}

// PairIssuer mints a token pair for a subject.
type PairIssuer interface {
	IssuePair(subject token.Subject) (*token.Pair, error)
}

// GateConfig holds everything a Gate needs. All fields except Observer and
// Logger are required.
type GateConfig struct {
	Verifier      TokenVerifier
	Issuer        PairIssuer
	Users         UserLookup
	SecureCookies bool
	Observer      Observer
	Logger        *slog.Logger
}

// Gate makes authorization decisions and owns the cookie session lifecycle.
type Gate struct {
	resolver *Resolver
	issuer   PairIssuer
	secure   bool
	observer Observer
	logger   *slog.Logger
}

// NewGate creates a Gate from cfg.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Verifier == nil || cfg.Issuer == nil || cfg.Users == nil {
		return nil, errors.New("auth: gate requires a verifier, an issuer and a user lookup")
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Gate{
		resolver: NewResolver(cfg.Verifier, cfg.Users, cfg.Observer, cfg.Logger),
		issuer:   cfg.Issuer,
		secure:   cfg.SecureCookies,
		observer: cfg.Observer,
		logger:   cfg.Logger.With("component", "gate"),
	}, nil
}

// Resolver returns the gate's resolver.
func (g *Gate) Resolver() *Resolver {
	return g.resolver
}

// Authorize resolves creds and decides in one step.
func (g *Gate) Authorize(ctx context.Context, creds Credentials, requireAdmin bool) Decision {
	return g.Validate(ctx, creds).Check(requireAdmin)
}

// Validate resolves creds once. The returned Validation can be checked against
// an admin requirement and asked for the resolved user.
func (g *Gate) Validate(ctx context.Context, creds Credentials) *Validation {
	session, err := g.resolver.ResolveAccess(ctx, creds.AccessToken)
	return &Validation{
		session:  session,
		err:      err,
		observer: g.observer,
	}
}

// Validation is the object form of a gate check.
type Validation struct {
	session  *Session
	err      error
	observer Observer
}

// Check turns the resolution into a Decision.
func (v *Validation) Check(requireAdmin bool) Decision {
	d := decide(v.session, v.err, requireAdmin)
	v.observer.GateDecision(d.Outcome)
	return d
}

// User returns the resolved user, if resolution succeeded.
func (v *Validation) User() (*store.User, bool) {
	if v.session == nil {
		return nil, false
	}
	return v.session.User, true
}

// Session returns the resolved session, or nil.
func (v *Validation) Session() *Session {
	return v.session
}

// Err returns the resolution error, or nil.
func (v *Validation) Err() error {
	return v.err
}

func decide(session *Session, err error, requireAdmin bool) Decision {
	switch {
	case err == nil:
		if requireAdmin && !session.IsAdmin {
			return Decision{Outcome: Forbidden, Session: session}
		}
		return Decision{Outcome: Authorized, Session: session}
	case errors.Is(err, ErrNoAccessToken), errors.Is(err, token.ErrExpired):
		return Decision{Outcome: NeedsRefresh, Err: err}
	case errors.Is(err, token.ErrMalformedToken),
		errors.Is(err, token.ErrBadSignature),
		errors.Is(err, token.ErrWrongTokenUse),
		errors.Is(err, ErrUserNotFound):
		return Decision{Outcome: Unauthorized, Err: err}
	default:
		return Decision{Outcome: Failed, Err: err}
	}
}
