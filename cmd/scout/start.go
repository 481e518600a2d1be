package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/scoutbot/pkg/log"
	"github.com/sandevgo/scoutbot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ScoutBot services",
	Long:  `Starts the news and memory connectors plus every enabled transport (HTTP API, MCP, Telegram, CLI).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting scoutbot")

		app := NewApp(ctx)
		services := app.Services()
		transports, err := initTransports(ctx, app)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize transports")
		}
		services = append(services, transports...)

		// Start services
		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("scoutbot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
