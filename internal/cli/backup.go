package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/provider"
	"github.com/ledgerlite/ledgerlite/internal/snapshot"
)

// newBackupCmd creates the backup command group: save, status, clear.
func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage the on-device backup of your data",
		Long:  "Save, inspect, or delete the local snapshot that serves reads when the cloud is unreachable.",
	}
	cmd.AddCommand(newBackupSaveCmd(), newBackupLoadCmd(), newBackupStatusCmd(), newBackupClearCmd())
	return cmd
}

func newBackupLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Print the stored backup's records",
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

			snap, err := a.snapshots.Load(user)
			if errors.Is(err, snapshot.ErrSnapshotNotFound) {
				cmd.Println("No backup stored for this user.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("backup load: %w", err)
			}

			cmd.Printf("Backup saved %s\n\n", snap.SavedAt.Format("2006-01-02 15:04:05 MST"))
			for _, domain := range ledger.AllDomains() {
				renderRecords(cmd.OutOrStdout(), provider.Result{
					Domain:  domain,
					Source:  provider.SourceSnapshot,
					Records: snap.Data.Slice(domain),
				})
			}
			return nil
		},
	}
}

func newBackupSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Fetch all domains and store them as the local backup",
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

			data, sources, err := a.provider.GetAll(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("backup save: %w", err)
			}
			for domain, src := range sources {
				if src == provider.SourceSnapshot {
					cmd.PrintErrf("Warning: %s was read from the existing backup, not the cloud\n", domain)
				}
			}

			if err := a.snapshots.Save(user, data); err != nil {
				return fmt.Errorf("backup save: %w", err)
			}

			logger.Info().Str("user_id", user).Int("records", data.Len()).Msg("backup saved")
			cmd.Printf("Backup saved: %d records across %d domains\n", data.Len(), len(ledger.AllDomains()))
			return nil
		},
	}
}

func newBackupStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored backup's version, age, and record counts",
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

			info, err := a.snapshots.Stat(user)
			if errors.Is(err, snapshot.ErrSnapshotNotFound) {
				cmd.Println("No backup stored for this user.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("backup status: %w", err)
			}

			cmd.Printf("Version:  %s\n", info.Version)
			cmd.Printf("Saved at: %s\n", info.SavedAt.Format("2006-01-02 15:04:05 MST"))
			cmd.Printf("Size:     %d bytes\n", info.SizeBytes)
			for _, domain := range ledger.AllDomains() {
				cmd.Printf("  %-11s %d\n", domain.String()+":", info.Counts[domain])
			}
			return nil
		},
	}
}

func newBackupClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored backup",
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

			if err := a.snapshots.Clear(user); err != nil {
				return fmt.Errorf("backup clear: %w", err)
			}
			cmd.Println("Backup deleted.")
			return nil
		},
	}
}
