// ABOUTME: Tests for config path resolution and the admin subcommands
// ABOUTME: Exercises bootstrap, health and token inspect without a live server

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

func TestGetConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("LIBRARY_CONFIG", "/env/config.yaml")
		if got := getConfigPath("/flag/config.yaml"); got != "/flag/config.yaml" {
			t.Errorf("getConfigPath() = %q, want flag value", got)
		}
	})

	t.Run("env var", func(t *testing.T) {
		t.Setenv("LIBRARY_CONFIG", "/env/config.yaml")
		if got := getConfigPath(""); got != "/env/config.yaml" {
			t.Errorf("getConfigPath() = %q, want env value", got)
		}
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("LIBRARY_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		want := filepath.Join("/xdg", "library-api", "config.yaml")
		if got := getConfigPath(""); got != want {
			t.Errorf("getConfigPath() = %q, want %q", got, want)
		}
	})
}

func TestBootstrapAdmin_CreatesAdmin(t *testing.T) {
	s := store.NewMockStore()
	ctx := context.Background()

	user, promoted, err := bootstrapAdmin(ctx, s, bootstrapOptions{
		username:   "root",
		password:   "long-enough",
		firstName:  "Ada",
		secondName: "Lovelace",
		birthDate:  "1990-12-10",
	})
	if err != nil {
		t.Fatalf("bootstrapAdmin() error = %v", err)
	}
	if promoted {
		t.Error("promoted = true, want false for a new account")
	}
	if !user.IsAdmin {
		t.Error("user.IsAdmin = false")
	}

	stored, err := s.GetUserByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if !stored.IsAdmin {
		t.Error("stored user is not admin")
	}
	if stored.PasswordHash == "long-enough" {
		t.Error("password stored in plain text")
	}

	if _, _, err := bootstrapAdmin(ctx, s, bootstrapOptions{username: "second", password: "long-enough", birthDate: "1990-01-01"}); err == nil {
		t.Error("second bootstrap succeeded, want error")
	}
}

func TestBootstrapAdmin_PromotesExisting(t *testing.T) {
	s := store.NewMockStore()
	ctx := context.Background()

	reader := &store.User{
		FirstName:    "Reader",
		SecondName:   "One",
		BirthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Username:     "reader",
		PasswordHash: "x",
	}
	if err := s.CreateUser(ctx, reader); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	user, promoted, err := bootstrapAdmin(ctx, s, bootstrapOptions{username: "reader"})
	if err != nil {
		t.Fatalf("bootstrapAdmin() error = %v", err)
	}
	if !promoted || user.ID != reader.ID {
		t.Errorf("got promoted=%v id=%d, want promoted=true id=%d", promoted, user.ID, reader.ID)
	}
}

func TestBootstrapAdmin_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts bootstrapOptions
	}{
		{"short username", bootstrapOptions{username: "a", password: "long-enough", birthDate: "1990-01-01"}},
		{"short password", bootstrapOptions{username: "root", password: "short", birthDate: "1990-01-01"}},
		{"bad date", bootstrapOptions{username: "root", password: "long-enough", birthDate: "10.12.1990"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := bootstrapAdmin(context.Background(), store.NewMockStore(), tt.opts); err == nil {
				t.Error("bootstrapAdmin() error = nil, want error")
			}
		})
	}
}

func TestHealthURL(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:8000": "http://127.0.0.1:8000/health/ready",
		"0.0.0.0:8000":   "http://127.0.0.1:8000/health/ready",
		":9000":          "http://127.0.0.1:9000/health/ready",
	}
	for addr, want := range tests {
		if got := healthURL(addr); got != want {
			t.Errorf("healthURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestCheckHealth(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	var out bytes.Buffer
	if err := checkHealth(context.Background(), &out, ok.URL); err != nil {
		t.Fatalf("checkHealth() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "healthy" {
		t.Errorf("output = %q", out.String())
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := checkHealth(context.Background(), &out, down.URL)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("checkHealth() error = %v, want 503", err)
	}
}

func TestInspectToken(t *testing.T) {
	tokens, err := token.NewManager(token.Config{
		Secret:     []byte(strings.Repeat("s", token.MinSecretLength)),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	pair, err := tokens.IssuePair(token.Subject{UserID: 7, IsAdmin: true})
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	var out bytes.Buffer
	if err := inspectToken(&out, tokens, pair.RefreshToken); err != nil {
		t.Fatalf("inspectToken() error = %v", err)
	}
	var report tokenReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Result != "ok" || report.UserID != 7 || !report.IsAdmin || report.Use != token.UseRefresh {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.ID == "" {
		t.Error("report is missing jti")
	}

	out.Reset()
	if err := inspectToken(&out, tokens, "not-a-token"); err == nil {
		t.Error("inspectToken() error = nil for garbage input")
	}
	if !strings.Contains(out.String(), `"malformed"`) {
		t.Errorf("output = %q, want malformed result", out.String())
	}
}
