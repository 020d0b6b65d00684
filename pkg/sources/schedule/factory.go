package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/protocol"
)

var ErrConfigNil = errors.New("config cannot be nil")

// NewSourceFactory creates the factory for cron schedule sources.
func NewSourceFactory() protocol.SourceFactory {
	return &SourceFactory{}
}

type SourceFactory struct{}

func (f *SourceFactory) ID() string {
	return "schedule"
}

func (f *SourceFactory) Create(_ context.Context, config map[string]any, logger *slog.Logger) (protocol.Source, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	source, err := NewSource(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule source: %w", err)
	}

	return source, nil
}
