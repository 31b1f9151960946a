package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/quarterplan/app"
	"github.com/kilianp07/quarterplan/pkg/export"
)

var (
	scheduleScenario string
	scheduleConfig   string
	scheduleFormat   string
	schedulePublish  bool
	scheduleOutput   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan a scenario and print the schedule",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleScenario, "scenario", "s", "", "scenario file (defaults to scenario.path)")
	scheduleCmd.Flags().StringVar(&scheduleConfig, "scenario-config", "", "config file (yaml, json or jsonc) replacing the scenario's config block")
	scheduleCmd.Flags().StringVar(&scheduleFormat, "format", "json", "output format: json or csv")
	scheduleCmd.Flags().BoolVar(&schedulePublish, "publish", false, "publish the plan over MQTT")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduleFormat != "json" && scheduleFormat != "csv" {
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, scheduleFormat)
	}
	return withService(cmd, app.Options{Publish: schedulePublish}, func(ctx context.Context, svc *app.Service) error {
		run, err := svc.Planner.PlanSource(ctx, app.Source{Scenario: svc.ScenarioPath(scheduleScenario), Config: scheduleConfig})
		if err != nil {
			return err
		}
		if schedulePublish {
			if err := svc.Planner.Publish(ctx, run); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
		}
		if scheduleOutput != "" {
			return export.WriteFile(scheduleOutput, scheduleFormat, run.Document())
		}
		return export.Write(cmd.OutOrStdout(), scheduleFormat, run.Document())
	})
}
