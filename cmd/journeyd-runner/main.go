package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/journeyd/journeyd/pkg/cmd"
	"github.com/journeyd/journeyd/pkg/config"
	"github.com/journeyd/journeyd/pkg/log"
	"github.com/journeyd/journeyd/pkg/providers"
)

func main() {
	command := &cli.Command{
		Name:                  "journeyd-runner",
		Usage:                 "Execute workflows for ingested marketing events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "runner-id",
				Aliases: []string{"id"},
				Usage:   "Custom runner ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("RUNNER_ID"),
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

			runnerID := command.String("runner-id")
			if runnerID == "" {
				runnerID = "runner-" + uuid.NewString()[:8]
			}

			logger := log.WithModule("journeyd-runner").With("runner_id", runnerID)
			logger.InfoContext(ctx, "Initializing JourneyD Runner")

			var credentials providers.CredentialStore = providers.NewStaticCredentialStore()

			var sources []config.SourceConfig

			if path := command.String("config"); path != "" {
				file, err := config.Load(path)
				if err != nil {
					return err
				}

				credentials = file.CredentialStore()
				sources = file.Sources
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "journeyd-runner", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			registry := cmd.NewRegistry(logger, persistence, credentials)

			manager := NewRunnerManager(runnerID, persistence, eventBus, logger, registry, sources)

			err := manager.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start runner", "error", err)
			}

			return err
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
