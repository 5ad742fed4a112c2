package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlite/ledgerlite/internal/connectivity"
	"github.com/ledgerlite/ledgerlite/internal/snapshot"
)

// newStatusCmd creates the status command: a one-shot report of
// connectivity, backup state, and the pending sync queue.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, backup, and sync queue state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(getConfig(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			prober := &connectivity.HTTPProber{URL: a.client.HealthURL()}
			probeCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			online := prober.Probe(probeCtx)
			a.monitor.SetOnline(online)

			if online {
				cmd.Println("Network:  online")
			} else {
				cmd.Println("Network:  offline")
			}

			info, err := a.snapshots.Stat(user)
			switch {
			case errors.Is(err, snapshot.ErrSnapshotNotFound):
				cmd.Println("Backup:   none")
			case err != nil:
				return fmt.Errorf("status: %w", err)
			default:
				cmd.Printf("Backup:   v%s, saved %s\n", info.Version, info.SavedAt.Format("2006-01-02 15:04:05 MST"))
			}

			depth, err := a.agent.QueueDepth()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			cmd.Printf("Pending:  %d queued mutation(s)\n", depth)

			if !online && depth > 0 {
				cmd.Println("\nQueued changes will sync automatically when connectivity returns.")
			}
			return nil
		},
	}
}
