package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/provider"
)

// offlineBanner marks output that was served from the local backup.
var offlineBanner = lipgloss.NewStyle().
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("130")).
	Padding(0, 1).
	Render("Using Offline Backup Data")

// newGetCmd creates the get command: read one domain through the
// offline-first path.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <domain>",
		Short:     "Read one data domain, falling back to the local backup when offline",
		ValidArgs: domainNames(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			domain, err := ledger.ParseDomain(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(getConfig(cmd))
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.provider.GetDomain(cmd.Context(), user, domain)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Source == provider.SourceSnapshot {
				fmt.Fprintln(out, offlineBanner)
			}
			renderRecords(out, res)
			return nil
		},
	}
}

func domainNames() []string {
	names := make([]string, 0, len(ledger.AllDomains()))
	for _, d := range ledger.AllDomains() {
		names = append(names, d.String())
	}
	return names
}

// renderRecords prints one domain's rows. An empty result renders an
// explicit "no records" line so it cannot be confused with a failed read.
func renderRecords(w io.Writer, res provider.Result) {
	fmt.Fprintf(w, "%s (%s)\n", res.Domain, res.Source.Label())

	if res.Records.Len() == 0 {
		fmt.Fprintln(w, "  no records")
		return
	}

	switch res.Domain {
	case ledger.DomainExpenses:
		for _, e := range res.Records.Expenses {
			fmt.Fprintf(w, "  %s  %10s  %-15s %s\n",
				e.Date.Format("2006-01-02"), e.Amount.StringFixed(2), e.Category, e.Note)
		}
	case ledger.DomainIncome:
		for _, inc := range res.Records.Income {
			fmt.Fprintf(w, "  %s  %10s  %-15s %s\n",
				inc.Date.Format("2006-01-02"), inc.Amount.StringFixed(2), inc.Source, inc.Note)
		}
	case ledger.DomainCategories:
		for _, c := range res.Records.Categories {
			fmt.Fprintf(w, "  %s\n", c.Name)
		}
	case ledger.DomainForValues:
		for _, f := range res.Records.ForValues {
			fmt.Fprintf(w, "  %s\n", f.Value)
		}
	case ledger.DomainCards:
		for _, c := range res.Records.Cards {
			fmt.Fprintf(w, "  %s (****%s)\n", c.Name, c.LastFour)
		}
	}
}
