package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/quarterplan/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose planning metrics until interrupted",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)
	return withService(cmd, app.Options{}, func(ctx context.Context, svc *app.Service) error {
		return svc.Serve(ctx)
	})
}
