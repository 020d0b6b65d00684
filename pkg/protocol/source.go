package protocol

import (
	"context"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/models"
)

// EventCallback is invoked by a source for every marketing event it
// receives. The callback publishes the event toward the runner.
type EventCallback func(ctx context.Context, event *models.Event) error

// Source is a long-running producer of marketing events (queue consumer,
// scheduled campaign emitter, etc.).
type Source interface {
	Start(ctx context.Context, callback EventCallback) error
	Stop(ctx context.Context) error
	Validate(ctx context.Context) error
}

// SourceFactory creates sources from configuration.
type SourceFactory interface {
	Create(ctx context.Context, config map[string]any, logger *slog.Logger) (Source, error)
	ID() string
}
