// ABOUTME: Shared fixtures for auth tests
// ABOUTME: Builds a gate over MockStore with a controllable clock and a recording observer

package auth

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

var testSecret = []byte("auth-package-test-secret-32bytes")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	mu        sync.Mutex
	issued    map[token.Use]int
	verified  map[string]int
	decisions map[Outcome]int
	refreshes map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		issued:    make(map[token.Use]int),
		verified:  make(map[string]int),
		decisions: make(map[Outcome]int),
		refreshes: make(map[string]int),
	}
}

func (o *recordingObserver) TokenIssued(use token.Use) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issued[use]++
}

func (o *recordingObserver) TokenVerified(use token.Use, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verified[string(use)+":"+result]++
}

func (o *recordingObserver) GateDecision(outcome Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions[outcome]++
}

func (o *recordingObserver) RefreshAttempt(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refreshes[result]++
}

type fixture struct {
	clock    *fakeClock
	tokens   *token.Manager
	users    *store.MockStore
	observer *recordingObserver
	logs     *bytes.Buffer
	gate     *Gate

	admin  *store.User
	reader *store.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tokens, err := token.NewManager(token.Config{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, token.WithClock(clock.Now))
	require.NoError(t, err)

	users := store.NewMockStore()
	ctx := context.Background()
	admin := &store.User{FirstName: "Root", SecondName: "Admin", Username: "admin", IsAdmin: true}
	reader := &store.User{FirstName: "Ada", SecondName: "Reader", Username: "reader"}
	require.NoError(t, users.CreateUser(ctx, admin))
	require.NoError(t, users.CreateUser(ctx, reader))

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := newRecordingObserver()

	gate, err := NewGate(GateConfig{
		Verifier: tokens,
		Issuer:   tokens,
		Users:    users,
		Observer: observer,
		Logger:   logger,
	})
	require.NoError(t, err)

	return &fixture{
		clock:    clock,
		tokens:   tokens,
		users:    users,
		observer: observer,
		logs:     logs,
		gate:     gate,
		admin:    admin,
		reader:   reader,
	}
}

// login mints a pair for user the way the login endpoint does.
func (f *fixture) login(t *testing.T, user *store.User) *token.Pair {
	t.Helper()
	pair, err := f.tokens.IssuePair(token.Subject{UserID: user.ID, IsAdmin: user.IsAdmin})
	require.NoError(t, err)
	return pair
}

func creds(pair *token.Pair) Credentials {
	return Credentials{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

func withCookies(r *http.Request, c Credentials) *http.Request {
	if c.AccessToken != "" {
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: c.AccessToken})
	}
	if c.RefreshToken != "" {
		r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: c.RefreshToken})
	}
	return r
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}
