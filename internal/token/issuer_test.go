// ABOUTME: Tests for access/refresh issuance
// ABOUTME: Verifies reserved claims, pair consistency and configured lifetimes

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssuePair(t *testing.T) {
	subjects := []Subject{
		{UserID: 42, IsAdmin: false},
		{UserID: 1, IsAdmin: true},
		{UserID: 2_147_483_646, IsAdmin: false},
	}

	for _, subject := range subjects {
		clock := newFakeClock()
		m := newTestManager(t, clock)

		pair, err := m.IssuePair(subject)
		require.NoError(t, err)
		require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

		access, err := m.Verify(pair.AccessToken)
		require.NoError(t, err)
		refresh, err := m.Verify(pair.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, subject, access.Subject())
		assert.Equal(t, access.Subject(), refresh.Subject())
		assert.Equal(t, UseAccess, access.Use)
		assert.Equal(t, UseRefresh, refresh.Use)
		assert.True(t, access.IssuedAt.Equal(refresh.IssuedAt.Time))

		assert.True(t, access.ExpiresAtTime().Before(refresh.ExpiresAtTime()))
		assert.True(t, clock.Now().Add(15*time.Minute).Equal(access.ExpiresAtTime()))
		assert.True(t, clock.Now().Add(7*24*time.Hour).Equal(refresh.ExpiresAtTime()))
		assert.True(t, pair.AccessExpiresAt.Equal(access.ExpiresAtTime()))
		assert.True(t, pair.RefreshExpiresAt.Equal(refresh.ExpiresAtTime()))
	}
}

func TestIssuer_ReservedClaims(t *testing.T) {
	clock := newFakeClock()
	ids := []string{"first", "second"}
	m, err := NewManager(Config{
		Secret:     testSecret,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, WithClock(clock.Now), WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	require.NoError(t, err)

	pair, err := m.IssuePair(Subject{UserID: 3})
	require.NoError(t, err)

	access, err := m.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := m.Verify(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, IssuerName, access.Issuer)
	assert.Equal(t, "first", access.ID)
	assert.Equal(t, "second", refresh.ID)
	assert.True(t, access.IssuedAt.Equal(clock.Now()))
}

func TestIssuer_UniqueIDs(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(t, clock)

	seen := make(map[string]bool)
	for range 10 {
		pair, err := m.IssuePair(Subject{UserID: 1})
		require.NoError(t, err)
		for _, tok := range []string{pair.AccessToken, pair.RefreshToken} {
			c, err := m.Verify(tok)
			require.NoError(t, err)
			assert.False(t, seen[c.ID], "duplicate jti %s", c.ID)
			seen[c.ID] = true
		}
	}
}

func TestManager_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Secret: testSecret, AccessTTL: time.Minute, RefreshTTL: time.Hour}, false},
		{"short secret", Config{Secret: []byte("short"), AccessTTL: time.Minute, RefreshTTL: time.Hour}, true},
		{"zero access", Config{Secret: testSecret, AccessTTL: 0, RefreshTTL: time.Hour}, true},
		{"refresh not longer", Config{Secret: testSecret, AccessTTL: time.Hour, RefreshTTL: time.Hour}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSigner_WeakSecret(t *testing.T) {
	_, err := NewSigner([]byte("too-short"))
	assert.ErrorIs(t, err, ErrWeakSecret)
}
