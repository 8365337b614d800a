package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow/internal/initialization"
	"github.com/leadflow/leadflow/internal/server"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the leadflow service",
		Long:  `Start the HTTP service that accepts automation requests and manages provider connections.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return runStart(debug)
		},
	}

	return cmd
}

func runStart(debug bool) error {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting leadflow service")

	config, err := initialization.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	deps, err := initialization.BuildAppDependencies(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		AgentController:      deps.AgentController,
		ConnectionController: deps.ConnectionController,
	})

	log.Info().Str("address", config.HTTPAddress).Msg("HTTP server listening")

	if err := app.Listen(config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("Leadflow service stopped")
	return nil
}
