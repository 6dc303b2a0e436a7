package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/suiwork/internal/core/domain"
	"github.com/vietddude/suiwork/internal/infra/storage"
)

var (
	jobsStatus string
	jobsLimit  int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List marketplace jobs from the record store",
	Run:   runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", string(domain.JobOpen), "job status filter (empty for all)")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "maximum rows")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := startApp(ctx)
	defer stopApp(app)

	q := storage.Query{OrderBy: "created_at", Desc: true, Limit: jobsLimit}
	if jobsStatus != "" {
		q.Filters = append(q.Filters, storage.Eq("status", jobsStatus))
	}
	rows, err := app.Records().Select(ctx, storage.Jobs, q)
	if err != nil {
		fail(app, "Failed to list jobs", err)
	}
	jobs, err := storage.Decode[domain.Job](rows)
	if err != nil {
		fail(app, "Failed to decode jobs", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tBUDGET\tSTATUS\tESCROW")
	for _, j := range jobs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%t\n", j.ID, j.Title, j.Budget, j.Status, j.EscrowLocked)
	}
	_ = w.Flush()
}
