package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ledgerlite/ledgerlite/internal/snapshot"
	"github.com/ledgerlite/ledgerlite/internal/tui"
)

// newTUICmd creates the tui command: a live dashboard showing
// connectivity, session countdown, backup age, and sync queue depth.
func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Watch connectivity and session state live",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return errors.New("tui requires an interactive terminal")
			}
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(getConfig(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			a.guard.Begin(user)
			go a.monitor.Run(cmd.Context(), a.cfg.ProbeInterval())

			statusFn := func() tui.Status {
				s := tui.Status{
					Online:           a.monitor.IsOnline(),
					SessionState:     a.guard.Check(),
					SessionRemaining: a.guard.Remaining(),
					UsingOffline:     a.provider.UsingOfflineData(),
				}
				if msg, ok := a.guard.WarningMessage(); ok {
					s.Warning = msg
				}
				if info, statErr := a.snapshots.Stat(user); statErr == nil {
					s.SnapshotSavedAt = info.SavedAt
				} else if !errors.Is(statErr, snapshot.ErrSnapshotNotFound) {
					logger.Warn().Err(statErr).Msg("backup stat failed")
				}
				if depth, depthErr := a.agent.QueueDepth(); depthErr == nil {
					s.QueueDepth = depth
				}
				return s
			}

			program := tea.NewProgram(tui.NewStatusModel(statusFn), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
}
