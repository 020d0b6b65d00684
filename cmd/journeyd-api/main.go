package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/journeyd/journeyd/pkg/cmd"
	"github.com/journeyd/journeyd/pkg/config"
	"github.com/journeyd/journeyd/pkg/log"
	"github.com/journeyd/journeyd/pkg/providers"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "journeyd-api",
		Usage:                 "Manage workflows and ingest marketing events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the deployment configuration file",
				Sources: cli.EnvVars("JOURNEYD_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing JourneyD API")

			var credentials providers.CredentialStore = providers.NewStaticCredentialStore()

			if path := command.String("config"); path != "" {
				file, err := config.Load(path)
				if err != nil {
					return err
				}

				credentials = file.CredentialStore()
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "journeyd-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger, persistence, credentials)

			api := NewAPI(logger, persistence, registry, eventBus)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return err
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
