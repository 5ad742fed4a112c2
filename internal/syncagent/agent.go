// Package syncagent queues mutations that failed against the hosted
// backend and replays them once connectivity returns. Delivery is
// at-least-once: a replayed mutation may reach the backend more than
// once, so the backend deduplicates on the mutation ID.
package syncagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ledgerlite/ledgerlite/internal/connectivity"
	"github.com/ledgerlite/ledgerlite/internal/live"
)

// ErrQueuedForRetry is returned by Apply when the mutation could not be
// delivered now and has been queued durably instead. The write is not
// lost; it is pending.
var ErrQueuedForRetry = errors.New("mutation queued for retry once connectivity returns")

// queueFileExtension is the file extension for queued mutations.
const queueFileExtension = ".json"

// Agent intercepts failed mutations and replays them later. The queue
// lives on disk so pending writes survive a restart.
type Agent struct {
	dir     string
	mutator live.Mutator
	logger  zerolog.Logger

	// register guards the once-per-process monitor registration.
	register sync.Once
	cancel   func()

	// replayMu serializes replays so a probe flap cannot interleave two.
	replayMu sync.Mutex
}

// NewAgent creates an agent whose queue lives in dir, creating it if
// needed. mutator is the real backend path used for delivery.
func NewAgent(dir string, mutator live.Mutator, logger zerolog.Logger) (*Agent, error) {
	if dir == "" {
		return nil, errors.New("sync queue directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create sync queue directory: %w", err)
	}
	return &Agent{
		dir:     dir,
		mutator: mutator,
		logger:  logger.With().Str("component", "syncagent").Logger(),
	}, nil
}

// Register subscribes the agent to connectivity transitions, exactly
// once per process lifetime. Subsequent calls are no-ops. Whenever the
// monitor reports a return to online, the agent replays its queue in the
// background.
func (a *Agent) Register(monitor *connectivity.Monitor) {
	a.register.Do(func() {
		a.cancel = monitor.Subscribe(func(online bool) {
			if !online {
				return
			}
			go func() {
				if _, err := a.Replay(context.Background()); err != nil {
					a.logger.Warn().Err(err).Msg("replay after reconnect incomplete")
				}
			}()
		})
		a.logger.Info().Str("queue_dir", a.dir).Msg("sync agent registered")
	})
}

// Unregister detaches the agent from the monitor. Queued mutations stay
// on disk.
func (a *Agent) Unregister() {
	if a.cancel != nil {
		a.cancel()
	}
}

// Apply implements live.Mutator with interception: it tries the real
// backend first and, when delivery fails, persists the mutation and
// returns ErrQueuedForRetry.
func (a *Agent) Apply(ctx context.Context, m live.Mutation) error {
	err := a.mutator.Apply(ctx, m)
	if err == nil {
		return nil
	}

	a.logger.Warn().
		Str("mutation_id", m.ID).
		Str("domain", m.Domain).
		Err(err).
		Msg("mutation failed, queueing for retry")

	if enqueueErr := a.Enqueue(m); enqueueErr != nil {
		// Queueing itself failed: surface the original delivery error
		// wrapped with the storage failure so nothing is silently lost.
		return fmt.Errorf("mutation failed and could not be queued: %w (delivery error: %w)", enqueueErr, err)
	}
	return fmt.Errorf("%w: %s", ErrQueuedForRetry, m.ID)
}

// Enqueue persists a mutation to the queue. The file name is the
// mutation's ULID, which keeps directory order equal to enqueue order.
func (a *Agent) Enqueue(m live.Mutation) error {
	blob, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mutation %s: %w", m.ID, err)
	}

	filePath := filepath.Join(a.dir, m.ID+queueFileExtension)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, blob, 0600); writeErr != nil {
		return fmt.Errorf("write queued mutation: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("store queued mutation: %w", renameErr)
	}
	return nil
}

// Pending returns the queued mutations in enqueue (ULID) order.
func (a *Agent) Pending() ([]live.Mutation, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("read sync queue: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != queueFileExtension {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pending := make([]live.Mutation, 0, len(names))
	for _, name := range names {
		blob, readErr := os.ReadFile(filepath.Join(a.dir, name))
		if readErr != nil {
			return nil, fmt.Errorf("read queued mutation %s: %w", name, readErr)
		}
		var m live.Mutation
		if unmarshalErr := json.Unmarshal(blob, &m); unmarshalErr != nil {
			a.logger.Warn().Str("file", name).Err(unmarshalErr).Msg("dropping unreadable queued mutation")
			_ = os.Remove(filepath.Join(a.dir, name))
			continue
		}
		pending = append(pending, m)
	}
	return pending, nil
}

// Replay delivers queued mutations FIFO. A successfully delivered
// mutation is removed from the queue; the first failure stops the replay
// and leaves the remainder queued for the next attempt. Returns how many
// mutations were delivered.
func (a *Agent) Replay(ctx context.Context) (int, error) {
	a.replayMu.Lock()
	defer a.replayMu.Unlock()

	pending, err := a.Pending()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	a.logger.Info().Int("pending", len(pending)).Msg("replaying queued mutations")

	delivered := 0
	for _, m := range pending {
		if applyErr := a.mutator.Apply(ctx, m); applyErr != nil {
			return delivered, fmt.Errorf("replay stopped at mutation %s: %w", m.ID, applyErr)
		}
		if removeErr := os.Remove(filepath.Join(a.dir, m.ID+queueFileExtension)); removeErr != nil && !os.IsNotExist(removeErr) {
			// The mutation was delivered; a lingering file only means
			// it may be delivered again, which at-least-once permits.
			a.logger.Warn().Str("mutation_id", m.ID).Err(removeErr).Msg("could not remove delivered mutation")
		}
		delivered++
	}
	return delivered, nil
}

// QueueDepth returns the number of queued mutations without parsing
// them.
func (a *Agent) QueueDepth() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, fmt.Errorf("read sync queue: %w", err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), queueFileExtension) {
			count++
		}
	}
	return count, nil
}
