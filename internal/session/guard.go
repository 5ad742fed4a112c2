// Package session extends an authenticated session across connectivity
// outages for a bounded grace period, after which re-authentication is
// forced.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSessionExpired is returned when the offline grace period has elapsed
// and the session can no longer be continued. Only a fresh online
// authentication creates a new session.
var ErrSessionExpired = errors.New("session expired: re-authentication required")

// ErrNoSession is returned when no session has been established.
var ErrNoSession = errors.New("no active session")

// State is the guard's position in its lifecycle.
type State int

const (
	// StateNone means no session is active.
	StateNone State = iota
	// StateOnline is an authenticated session with connectivity.
	StateOnline
	// StateOfflineGrace is an authenticated session riding out an outage.
	StateOfflineGrace
	// StateOfflineWarning is the final portion of the grace window.
	StateOfflineWarning
	// StateExpired is terminal for the current session.
	StateExpired
)

// String returns a short label for logging and status output.
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateOnline:
		return "online"
	case StateOfflineGrace:
		return "offline"
	case StateOfflineWarning:
		return "offline-warning"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// warningFraction is the tail portion of the grace window during which a
// countdown warning is surfaced.
const warningFraction = 0.2

// Guard owns the session continuity state machine. All writes to the
// state happen inside the guard; other components only read via Check,
// WarningMessage, and Remaining.
type Guard struct {
	mu sync.Mutex

	userID          string
	authenticatedAt time.Time
	lastOnlineAt    time.Time
	online          bool
	expired         bool
	active          bool

	grace  time.Duration
	logger zerolog.Logger

	// now is injectable for deterministic grace-period tests.
	now func() time.Time
}

// NewGuard creates a guard with the given grace period.
func NewGuard(grace time.Duration, logger zerolog.Logger) *Guard {
	return &Guard{
		grace:  grace,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
}

// SetClock overrides the guard's time source for tests.
func (g *Guard) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Begin establishes a session for userID. Sessions are created while
// online, so the guard starts in StateOnline. Any previous session state
// is discarded.
func (g *Guard) Begin(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.userID = userID
	g.authenticatedAt = now
	g.lastOnlineAt = now
	g.online = true
	g.expired = false
	g.active = true

	g.logger.Info().Str("user_id", userID).Msg("session established")
}

// End destroys the current session (logout).
func (g *Guard) End() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active {
		g.logger.Info().Str("user_id", g.userID).Msg("session ended")
	}
	g.active = false
	g.expired = false
	g.userID = ""
}

// HandleConnectivity feeds a connectivity transition into the guard.
// Wire it to the connectivity monitor's Subscribe. Going offline freezes
// lastOnlineAt at the moment of loss; returning online before expiry
// resets it.
func (g *Guard) HandleConnectivity(online bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active || g.expired {
		g.online = online
		return
	}

	now := g.now()
	if !online && g.online {
		g.lastOnlineAt = now
		g.logger.Warn().
			Str("user_id", g.userID).
			Dur("grace_period", g.grace).
			Msg("connectivity lost, session running on grace period")
	}
	if online && !g.online {
		// Returning online only revives the session if the grace
		// period has not already elapsed.
		if now.Sub(g.lastOnlineAt) <= g.grace {
			g.lastOnlineAt = now
			g.logger.Info().Str("user_id", g.userID).Msg("connectivity restored, session continues")
		} else {
			g.expired = true
			g.logger.Warn().Str("user_id", g.userID).Msg("reconnected after grace period, session expired")
		}
	}
	g.online = online
}

// Check re-evaluates the state at the current instant. The grace check
// is a point-in-time comparison, not a timer: it runs on every access.
// Crossing the grace boundary marks the session expired permanently.
func (g *Guard) Check() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkLocked()
}

func (g *Guard) checkLocked() State {
	if !g.active {
		return StateNone
	}
	if g.expired {
		return StateExpired
	}
	if g.online {
		return StateOnline
	}

	elapsed := g.now().Sub(g.lastOnlineAt)
	if elapsed > g.grace {
		g.expired = true
		g.logger.Warn().
			Str("user_id", g.userID).
			Dur("offline_for", elapsed).
			Msg("offline grace period elapsed, session expired")
		return StateExpired
	}

	warningAfter := time.Duration((1 - warningFraction) * float64(g.grace))
	if elapsed >= warningAfter {
		return StateOfflineWarning
	}
	return StateOfflineGrace
}

// Remaining returns how much of the grace window is left. Zero when the
// session is online, inactive, or already expired.
func (g *Guard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.checkLocked() {
	case StateOfflineGrace, StateOfflineWarning:
		left := g.grace - g.now().Sub(g.lastOnlineAt)
		if left < 0 {
			return 0
		}
		return left
	default:
		return 0
	}
}

// WarningMessage returns the countdown message for the UI and whether a
// warning is currently active.
func (g *Guard) WarningMessage() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.checkLocked() != StateOfflineWarning {
		return "", false
	}
	left := g.grace - g.now().Sub(g.lastOnlineAt)
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("Offline session expires in %s. Reconnect to stay signed in.", left.Round(time.Second)), true
}

// Validate returns nil while the session may be used, ErrSessionExpired
// once the grace period has elapsed, and ErrNoSession when no session
// exists.
func (g *Guard) Validate() error {
	switch g.Check() {
	case StateNone:
		return ErrNoSession
	case StateExpired:
		return ErrSessionExpired
	default:
		return nil
	}
}

// UserID returns the authenticated user, or empty when inactive.
func (g *Guard) UserID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return ""
	}
	return g.userID
}
