package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ledgerlite/ledgerlite/internal/cache"
	"github.com/ledgerlite/ledgerlite/internal/config"
	"github.com/ledgerlite/ledgerlite/internal/connectivity"
	"github.com/ledgerlite/ledgerlite/internal/live"
	"github.com/ledgerlite/ledgerlite/internal/provider"
	"github.com/ledgerlite/ledgerlite/internal/session"
	"github.com/ledgerlite/ledgerlite/internal/snapshot"
	"github.com/ledgerlite/ledgerlite/internal/syncagent"
)

type ctxKey int

const configKey ctxKey = iota

// setConfig stores the loaded configuration on the command's context so
// subcommands can retrieve it without re-reading the file.
func setConfig(cmd *cobra.Command, cfg *config.Config) {
	cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
}

// getConfig returns the configuration loaded by PersistentPreRunE, or
// defaults when the command runs outside the root (direct construction in
// tests).
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.New()
}

// requireUser reads the persistent --user flag, which every data command
// needs.
func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", errors.New("--user is required")
	}
	return user, nil
}

// app bundles the wired components behind a command: the live client, the
// offline-first provider on top of it, and the durable local stores.
type app struct {
	cfg       *config.Config
	client    *live.Client
	monitor   *connectivity.Monitor
	guard     *session.Guard
	cats      *cache.CategoryCache
	snapshots *snapshot.Store
	provider  *provider.Provider
	agent     *syncagent.Agent
}

// newApp wires the full stack from configuration. The session guard is
// subscribed to the connectivity monitor and the sync agent registers for
// reconnect replay.
func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.EnsureStorageDirs(); err != nil {
		return nil, err
	}

	log := config.GetLogger()
	client := live.NewClient(cfg.Live.Endpoint, cfg.LiveTimeout(), log)

	snapshots, err := snapshot.NewStore(cfg.Storage.SnapshotDir, log)
	if err != nil {
		return nil, err
	}

	agent, err := syncagent.NewAgent(cfg.Storage.SyncQueueDir, client, log)
	if err != nil {
		return nil, err
	}

	cats := cache.New(cfg.CacheTTL())
	monitor := connectivity.NewMonitor(&connectivity.HTTPProber{URL: client.HealthURL()}, log)
	guard := session.NewGuard(cfg.GracePeriod(), log)
	monitor.Subscribe(guard.HandleConnectivity)
	agent.Register(monitor)

	return &app{
		cfg:       cfg,
		client:    client,
		monitor:   monitor,
		guard:     guard,
		cats:      cats,
		snapshots: snapshots,
		provider:  provider.New(client, snapshots, cats, cfg.LiveTimeout(), log),
		agent:     agent,
	}, nil
}

// close releases in-memory state. Durable state (snapshots, queued
// mutations) stays on disk.
func (a *app) close() {
	a.agent.Unregister()
	a.cats.ClearAll()
	a.guard.End()
}
