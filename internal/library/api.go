// ABOUTME: API wires the library handlers onto a ServeMux behind the auth gate
// ABOUTME: Route table, dependencies and the clock used for date validation

package library

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/store"
)

// Config holds the API dependencies. Store and Gate are required.
type Config struct {
	Store  store.Store
	Gate   *auth.Gate
	Logger *slog.Logger

	// Now supplies the current time. Defaults to time.Now.
	Now func() time.Time

	// BcryptCost is the cost used for new password hashes. Defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// API serves the library endpoints.
type API struct {
	store      store.Store
	gate       *auth.Gate
	logger     *slog.Logger
	now        func() time.Time
	bcryptCost int

	// dummyHash is compared against when a login names an unknown user so
	// both failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// New creates an API from cfg.
func New(cfg Config) (*API, error) {
	if cfg.Store == nil || cfg.Gate == nil {
		return nil, errors.New("library: store and gate are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("library-api-unknown-user"), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &API{
		store:      cfg.Store,
		gate:       cfg.Gate,
		logger:     cfg.Logger.With("component", "library"),
		now:        cfg.Now,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummy,
	}, nil
}

// Wrapper decorates a handler registered under pattern, e.g. with metrics.
type Wrapper func(pattern string, h http.Handler) http.Handler

// Register adds every library route to mux. wrap may be nil.
func (a *API) Register(mux *http.ServeMux, wrap Wrapper) {
	admin := a.gate.Middleware(true)
	user := a.gate.Middleware(false)

	routes := []struct {
		pattern string
		handler http.Handler
	}{
		// The refresh endpoint accepts every method.
		{auth.RefreshPath, a.gate.RefreshHandler()},
		{"POST /auth/register", http.HandlerFunc(a.handleRegister)},
		{"POST /auth/login", http.HandlerFunc(a.handleLogin)},
		{"GET /auth/logout", http.HandlerFunc(a.handleLogout)},

		{"POST /author/create", admin(http.HandlerFunc(a.handleCreateAuthor))},
		{"GET /author", admin(http.HandlerFunc(a.handleListAuthors))},
		{"GET /author/{id}", admin(http.HandlerFunc(a.handleGetAuthor))},
		{"PUT /author/{id}", admin(http.HandlerFunc(a.handleUpdateAuthor))},
		{"DELETE /author/{id}", admin(http.HandlerFunc(a.handleDeleteAuthor))},

		{"POST /book/create", admin(http.HandlerFunc(a.handleCreateBook))},
		{"GET /book", admin(http.HandlerFunc(a.handleListBooks))},
		{"GET /book/{id}", user(http.HandlerFunc(a.handleGetBook))},
		{"PUT /book/{id}", admin(http.HandlerFunc(a.handleUpdateBook))},
		{"DELETE /book/{id}", admin(http.HandlerFunc(a.handleDeleteBook))},
		{"POST /book/rent", admin(http.HandlerFunc(a.handleRentBook))},
		{"POST /book/return", admin(http.HandlerFunc(a.handleReturnBook))},

		{"GET /reader", admin(http.HandlerFunc(a.handleListReaders))},
		{"GET /reader/{id}", admin(http.HandlerFunc(a.handleGetReader))},

		// Profile routes run the gate themselves through Validate.
		{"GET /profile", http.HandlerFunc(a.handleGetProfile)},
		{"PUT /profile", http.HandlerFunc(a.handleUpdateProfile)},
	}

	for _, rt := range routes {
		h := rt.handler
		if wrap != nil {
			h = wrap(rt.pattern, h)
		}
		mux.Handle(rt.pattern, h)
	}
}

// today returns the current calendar date in UTC.
func (a *API) today() time.Time {
	y, m, d := a.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
