package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/quarterplan/app"
	"github.com/kilianp07/quarterplan/core/model"
	"github.com/kilianp07/quarterplan/core/planlog"
)

var (
	runsScenario string
	runsSince    time.Duration
	runsLimit    int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded planning runs",
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsScenario, "scenario", "", "only runs of this scenario name")
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs newer than this duration")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, _ []string) error {
	return withService(cmd, app.Options{}, func(ctx context.Context, svc *app.Service) error {
		q := planlog.Query{Scenario: runsScenario, Limit: runsLimit}
		if runsSince > 0 {
			q.Start = time.Now().Add(-runsSince)
		}
		recs, err := svc.Planner.History(ctx, q)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tSCENARIO\tSCHEDULED\tCRITICAL\tMAKESPAN")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1fw\n", r.ID, r.Timestamp.Format(time.RFC3339), r.Scenario,
				r.Reasons[model.ReasonScheduled], len(r.Critical), r.MakespanWeeks)
		}
		return w.Flush()
	})
}
