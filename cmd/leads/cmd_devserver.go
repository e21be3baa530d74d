package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/leads-admin/internal/devserver"
)

func newDevServerCmd(rt *cliState) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local leads API for development",
		Long: `Serve an in-memory leads API on the configured devserver address.

It is seeded with the account test@example.com / password (organisation 1)
and a handful of leads. Point the CLI at it with api.base_url or LEADS_API_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := devserver.SettingsFromConfig(rt.cfg)
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			srv := devserver.NewServer(settings, devserver.WithLogger(rt.logger.Named("devserver")))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dev API listening on %s\n", srv.BaseURL())
			if srv.BaseURL() != rt.cfg.APIBaseURL() {
				fmt.Fprintf(out, "Client is configured for %s; run 'leads config set-api %s' to use this server.\n",
					rt.cfg.APIBaseURL(), srv.BaseURL())
			}
			fmt.Fprintln(out, "Press Ctrl+C to stop.")

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override the configured port")
	return cmd
}
