package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/quarterplan/app"
	"github.com/kilianp07/quarterplan/core/model"
)

var (
	compareScenarios []string
	compareConfigs   []string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Plan several what-if scenarios and compare end dates",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringSliceVarP(&compareScenarios, "scenario", "s", nil, "scenario files, the first one is the baseline")
	compareCmd.Flags().StringSliceVar(&compareConfigs, "scenario-config", nil,
		"config files replacing the scenario config blocks; with a single scenario each one is a what-if against it")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	sources, err := app.Sources(compareScenarios, compareConfigs)
	if err != nil {
		return err
	}
	if len(sources) < 2 {
		return fmt.Errorf("compare needs at least two runs: %w", app.ErrNoScenario)
	}
	return withService(cmd, app.Options{}, func(ctx context.Context, svc *app.Service) error {
		runs, err := svc.Planner.Compare(ctx, sources)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCENARIO\tEND\tSCHEDULED\tUNSCHEDULABLE\tCRITICAL")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.Scenario, formatEnd(r.Result.End()),
				len(r.Result.Scheduled), len(r.Result.Unschedulable()), len(r.Slack.Critical))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return writeDeltas(cmd, runs)
	})
}

// writeDeltas lists issues whose end date moved relative to the baseline.
func writeDeltas(cmd *cobra.Command, runs []*app.Run) error {
	base := runs[0]
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "\nKEY\tSCENARIO\t%s END\tEND\tDELTA DAYS\n", base.Scenario)
	for _, rec := range base.Result.Issues {
		for _, other := range runs[1:] {
			alt, ok := other.Result.Lookup(rec.Key)
			if !ok || sameEnd(rec, alt) {
				continue
			}
			delta := "n/a"
			if rec.Dated() && alt.Dated() {
				delta = fmt.Sprintf("%+d", int(alt.EndDate.Sub(*rec.EndDate).Hours()/24))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.Key, other.Scenario, formatIssueEnd(rec), formatIssueEnd(alt), delta)
		}
	}
	return w.Flush()
}

func sameEnd(a, b model.ScheduledIssue) bool {
	if !a.Dated() || !b.Dated() {
		return a.Dated() == b.Dated()
	}
	return a.EndDate.Equal(*b.EndDate)
}

func formatIssueEnd(s model.ScheduledIssue) string {
	if !s.Dated() {
		return string(s.ScheduledReason)
	}
	return s.EndDate.Format(time.DateOnly)
}

func formatEnd(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
