package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/protocol"
)

var ErrConfigNil = errors.New("config cannot be nil")

// NewSourceFactory creates the factory for Redis queue sources.
func NewSourceFactory() protocol.SourceFactory {
	return &SourceFactory{}
}

type SourceFactory struct{}

func (f *SourceFactory) ID() string {
	return "queue"
}

func (f *SourceFactory) Create(ctx context.Context, config map[string]any, logger *slog.Logger) (protocol.Source, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	source, err := NewSource(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue source: %w", err)
	}

	return source, nil
}
