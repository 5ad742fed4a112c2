// Package connectivity observes network reachability and exposes the
// current online/offline state to the rest of the application.
//
// The reading is advisory: an online report means the local interface
// could reach the probe target, not that every backend call will succeed.
// Consumers must tolerate false positives and degrade gracefully when a
// subsequent live request still fails.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Prober answers a single reachability question.
type Prober interface {
	// Probe reports whether the network currently looks reachable.
	Probe(ctx context.Context) bool
}

// Monitor holds the process-wide connectivity state and notifies
// subscribers on transitions. It is the only writer of the state; all
// other components read it.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)

	prober Prober
	logger zerolog.Logger
}

// NewMonitor creates a monitor that starts in the online state. The
// prober may be nil when transitions are driven externally (tests, or an
// environment that delivers its own reachability events).
func NewMonitor(prober Prober, logger zerolog.Logger) *Monitor {
	return &Monitor{
		online: true,
		subs:   make(map[int]func(online bool)),
		prober: prober,
		logger: logger.With().Str("component", "connectivity").Logger(),
	}
}

// IsOnline returns the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn to be called on every online/offline transition.
// The returned cancel function removes the subscription; calling it more
// than once is harmless.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// SetOnline records a reachability observation. Subscribers are notified
// only when the state actually changes, in subscription order, outside
// the state lock so a subscriber may call back into the monitor.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	notify := make([]func(bool), 0, len(m.subs))
	for i := 0; i < m.nextID; i++ {
		if fn, ok := m.subs[i]; ok {
			notify = append(notify, fn)
		}
	}
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("connectivity changed")
	for _, fn := range notify {
		fn(online)
	}
}

// Run probes at the given interval until ctx is cancelled, feeding each
// observation into SetOnline. An immediate probe runs before the first
// tick so startup state does not wait a full interval.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if m.prober == nil {
		return
	}

	m.SetOnline(m.prober.Probe(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetOnline(m.prober.Probe(ctx))
		}
	}
}

// HTTPProber checks reachability with a HEAD request against a health
// endpoint.
type HTTPProber struct {
	// URL is probed on every check.
	URL string

	// Client defaults to a short-timeout client when nil.
	Client *http.Client
}

// probeTimeout bounds a single reachability check.
const probeTimeout = 5 * time.Second

// Probe reports whether the health endpoint answered at all. Any HTTP
// status counts as reachable; only transport errors count as offline.
func (p *HTTPProber) Probe(ctx context.Context) bool {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
