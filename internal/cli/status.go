package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity, dependencies and the restored wallet session",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := startApp(ctx)
	defer stopApp(app)

	report := app.Monitor().CheckHealth(ctx)
	session := app.Wallet().Session()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintf(w, "system\t%s\tcheckpoint %d\n", report.SystemStatus, report.LatestCheckpoint)
	_, _ = fmt.Fprintf(w, "network\tonline=%t\treachable=%t %s\n", report.Online, report.Reachable, report.ProbeError)

	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := report.Components[name]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, c.Status, c.Error)
	}

	if session.Connected {
		_, _ = fmt.Fprintf(w, "wallet\t%s\t%s %.9f SUI\n", session.Adapter, session.Address, session.Balance)
	} else {
		_, _ = fmt.Fprintln(w, "wallet\tdisconnected\t")
	}
	_ = w.Flush()
}
