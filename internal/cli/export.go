package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerlite/ledgerlite/internal/export"
	"github.com/ledgerlite/ledgerlite/internal/provider"
)

// newExportCmd creates the export command: resolve all domains through
// the offline-first path and write a portable artifact with provenance.
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data to JSON or CSV with source provenance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")

			a, err := newApp(getConfig(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			data, sources, err := a.provider.GetAll(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			// The artifact carries a single provenance label: live only
			// when every domain was served live.
			tag := provider.SourceLive
			for _, src := range sources {
				if src == provider.SourceSnapshot {
					tag = provider.SourceSnapshot
					break
				}
			}
			env := export.NewEnvelope(user, tag, data)

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, createErr := os.Create(outPath)
				if createErr != nil {
					return fmt.Errorf("export: %w", createErr)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			switch format {
			case "json":
				err = export.WriteJSON(out, env)
			case "csv":
				err = export.WriteCSV(out, env)
			default:
				return fmt.Errorf("unknown export format %q (want json or csv)", format)
			}
			if err != nil {
				return err
			}

			if outPath != "" {
				expenses, income := env.Totals()
				p := message.NewPrinter(language.English)
				p.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s (source: %s)\n",
					data.Len(), outPath, env.DataSource)
				p.Fprintf(cmd.OutOrStdout(), "Totals: expenses %s, income %s\n",
					expenses.StringFixed(2), income.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().String("format", "json", "export format: json or csv")
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	return cmd
}
