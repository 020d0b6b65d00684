// Package main provides the JourneyD API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/journeyd/journeyd/pkg/eventbus"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/services"
	"github.com/journeyd/journeyd/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) Start(port int) error {
	workflowService := services.NewWorkflow(a.persistence, a.registry)

	handlers := web.NewAPIHandlers(workflowService, a.persistence, a.eventBus, a.validate, a.registry)
	app := web.NewApp(handlers)

	return app.Listen(":" + strconv.Itoa(port))
}
