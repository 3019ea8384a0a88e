// ABOUTME: Shared fixtures for token tests
// ABOUTME: Fixed secret, controllable clock, and a manager builder

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testSecret is 32 bytes, the minimum accepted length.
var testSecret = []byte("library-api-test-secret-32bytes!")

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, WithClock(clock.Now))
	require.NoError(t, err)
	return m
}
