package main

import (
	"context"
	"os/signal"
	"syscall"

	"authsvc/cmd/internal/app"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the authsvc command. Running it serves the API until
// SIGINT or SIGTERM.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "authsvc",
		Short: "authsvc - email/password login issuing JWTs",
		Long: `authsvc exchanges an email and password for a short-lived JWT and
serves a bearer-protected user listing.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			log := app.NewLogger(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.Run(ctx, cfg, log, version); err != nil {
				log.Error("server.exit", "err", err)
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	app.BindFlags(cmd.Flags())

	cmd.SetContext(context.Background())
	return cmd
}
