package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/quarterplan/app"
)

var (
	slackScenario string
	slackConfig   string
)

var slackCmd = &cobra.Command{
	Use:   "slack",
	Short: "Show slack per scheduled issue and the critical path",
	RunE:  runSlack,
}

func init() {
	slackCmd.Flags().StringVarP(&slackScenario, "scenario", "s", "", "scenario file (defaults to scenario.path)")
	slackCmd.Flags().StringVar(&slackConfig, "scenario-config", "", "config file (yaml, json or jsonc) replacing the scenario's config block")
	rootCmd.AddCommand(slackCmd)
}

func runSlack(cmd *cobra.Command, _ []string) error {
	return withService(cmd, app.Options{}, func(ctx context.Context, svc *app.Service) error {
		run, err := svc.Planner.PlanSource(ctx, app.Source{Scenario: svc.ScenarioPath(slackScenario), Config: slackConfig})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tLANE\tSTART\tEND\tSLACK\tCRITICAL")
		for _, rec := range run.Result.Issues {
			if !rec.Dated() {
				continue
			}
			mark := ""
			if run.Slack.IsCritical(rec.Key) {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n", rec.Key, rec.Lane,
				rec.StartDate.Format(time.DateOnly), rec.EndDate.Format(time.DateOnly),
				run.Slack.Slack[rec.Key], mark)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "critical path (%d): %v\n", len(run.Slack.Critical), run.Slack.Critical)
		return err
	})
}
