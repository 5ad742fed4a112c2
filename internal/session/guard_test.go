package session_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlite/ledgerlite/internal/session"
)

const grace = 600 * time.Second

// newGuardAt returns a guard with an established session and a movable
// clock starting at base.
func newGuardAt(t *testing.T, base time.Time) (*session.Guard, *time.Time) {
	t.Helper()
	now := base
	g := session.NewGuard(grace, zerolog.Nop())
	g.SetClock(func() time.Time { return now })
	g.Begin("user-1")
	return g, &now
}

// TestGraceTimeline walks the full lifecycle for a 600s grace period:
// offline at t=0, still fine at t=100, warning at t=550, expired at t=601.
func TestGraceTimeline(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)

	g.HandleConnectivity(false) // t=0

	*now = base.Add(100 * time.Second)
	assert.Equal(t, session.StateOfflineGrace, g.Check())
	_, warning := g.WarningMessage()
	assert.False(t, warning)

	*now = base.Add(550 * time.Second)
	assert.Equal(t, session.StateOfflineWarning, g.Check())
	msg, warning := g.WarningMessage()
	require.True(t, warning)
	assert.Contains(t, msg, "50s")

	*now = base.Add(601 * time.Second)
	assert.Equal(t, session.StateExpired, g.Check())
	assert.ErrorIs(t, g.Validate(), session.ErrSessionExpired)
}

// TestWarningThreshold verifies the warning activates in the final 20%
// of the grace window and not before.
func TestWarningThreshold(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)
	g.HandleConnectivity(false)

	*now = base.Add(479 * time.Second)
	assert.Equal(t, session.StateOfflineGrace, g.Check())

	*now = base.Add(480 * time.Second)
	assert.Equal(t, session.StateOfflineWarning, g.Check())
}

// TestExpiryBoundary verifies the session survives exactly the grace
// period and expires one instant after.
func TestExpiryBoundary(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)
	g.HandleConnectivity(false)

	*now = base.Add(600 * time.Second)
	assert.NotEqual(t, session.StateExpired, g.Check())

	*now = base.Add(600*time.Second + time.Nanosecond)
	assert.Equal(t, session.StateExpired, g.Check())
}

// TestReconnectResetsGrace verifies returning online before expiry
// restores the online state and restarts the grace window from the new
// disconnection point.
func TestReconnectResetsGrace(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)

	g.HandleConnectivity(false)
	*now = base.Add(500 * time.Second)
	g.HandleConnectivity(true)
	assert.Equal(t, session.StateOnline, g.Check())

	// Drop again; the old 500s do not count against the new window.
	g.HandleConnectivity(false)
	*now = base.Add(900 * time.Second) // 400s into the second outage
	assert.Equal(t, session.StateOfflineGrace, g.Check())
}

// TestExpiredIsTerminal verifies reconnecting after expiry does not
// revive the session; only a fresh Begin does.
func TestExpiredIsTerminal(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)

	g.HandleConnectivity(false)
	*now = base.Add(grace + time.Minute)
	require.Equal(t, session.StateExpired, g.Check())

	g.HandleConnectivity(true)
	assert.Equal(t, session.StateExpired, g.Check())

	g.Begin("user-1")
	assert.Equal(t, session.StateOnline, g.Check())
	assert.NoError(t, g.Validate())
}

// TestRemaining reports the leftover grace window while offline.
func TestRemaining(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, now := newGuardAt(t, base)

	assert.Equal(t, time.Duration(0), g.Remaining(), "online session has no countdown")

	g.HandleConnectivity(false)
	*now = base.Add(200 * time.Second)
	assert.Equal(t, 400*time.Second, g.Remaining())
}

// TestEndDestroysSession verifies logout clears the session.
func TestEndDestroysSession(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	g, _ := newGuardAt(t, base)

	g.End()
	assert.Equal(t, session.StateNone, g.Check())
	assert.ErrorIs(t, g.Validate(), session.ErrNoSession)
	assert.Empty(t, g.UserID())
}
