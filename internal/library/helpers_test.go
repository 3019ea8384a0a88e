// ABOUTME: Test harness for the library API
// ABOUTME: Serves the full route table over MockStore with a fixed clock

package library

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const testPassword = "correct-horse"

type harness struct {
	t     *testing.T
	now   time.Time
	store *store.MockStore
	mux   *http.ServeMux

	admin  *store.User
	reader *store.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{t: t, now: testNow, store: store.NewMockStore()}
	clock := func() time.Time { return h.now }

	tokens, err := token.NewManager(token.Config{
		Secret:     []byte("library-handler-test-secret-32by"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}, token.WithClock(clock))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate, err := auth.NewGate(auth.GateConfig{
		Verifier: tokens,
		Issuer:   tokens,
		Users:    h.store,
		Logger:   logger,
	})
	require.NoError(t, err)

	api, err := New(Config{
		Store:      h.store,
		Gate:       gate,
		Logger:     logger,
		Now:        clock,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	h.mux = http.NewServeMux()
	api.Register(h.mux, nil)

	h.admin = h.createUser("admin", true)
	h.reader = h.createUser("reader", false)
	return h
}

func (h *harness) createUser(username string, isAdmin bool) *store.User {
	h.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(h.t, err)

	u := &store.User{
		FirstName:    "First",
		SecondName:   "Second",
		BirthDate:    time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	require.NoError(h.t, h.store.CreateUser(context.Background(), u))
	return u
}

// do sends a request through the mux. body is JSON-encoded unless it is a string.
func (h *harness) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

// login signs in through the API and returns the session cookies.
func (h *harness) login(username string) []*http.Cookie {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: testPassword}, nil)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(h.t, cookies, 2)
	return cookies
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) StatusBody {
	t.Helper()
	var body StatusBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func date(s string) Date {
	t, err := time.Parse(store.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return NewDate(t)
}

// seedBook creates an author and a book with qty copies directly in the store.
func (h *harness) seedBook(qty int) (*store.Author, *store.Book) {
	h.t.Helper()
	ctx := context.Background()
	author := &store.Author{Name: "Leo Tolstoy", Bio: "Russian writer", BirthDate: time.Date(1828, 9, 9, 0, 0, 0, 0, time.UTC)}
	require.NoError(h.t, h.store.CreateAuthor(ctx, author))
	book := &store.Book{
		Name:            "War and Peace",
		Description:     "A novel",
		PublicationDate: time.Date(1869, 1, 1, 0, 0, 0, 0, time.UTC),
		AuthorID:        author.ID,
		Genre:           "Novel",
		Quantity:        qty,
	}
	require.NoError(h.t, h.store.CreateBook(ctx, book))
	return author, book
}
