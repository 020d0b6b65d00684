// Package queue provides a Redis-backed event source that consumes
// marketing events pushed onto a list by upstream producers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
)

var (
	ErrQueueRequired       = errors.New("queue source queue name is required")
	ErrUnsupportedProvider = errors.New("unsupported queue provider")
)

// Source consumes JSON-encoded events from a Redis list. Messages that do
// not decode into a valid event are logged and dropped.
type Source struct {
	Queue      string
	Connection map[string]string

	client   redis.UniversalClient
	callback protocol.EventCallback
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSource creates a queue source from configuration.
func NewSource(ctx context.Context, config map[string]any, logger *slog.Logger) (*Source, error) {
	provider, _ := config["provider"].(string)
	if provider != "" && provider != "redis" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	queue, _ := config["queue"].(string)

	connectionConfig, _ := config["connection"].(map[string]any)

	connection := make(map[string]string)
	for k, v := range connectionConfig {
		if str, ok := v.(string); ok {
			connection[k] = str
		}
	}

	source := &Source{
		Queue:      queue,
		Connection: connection,
		stopCh:     make(chan struct{}),
		logger: logger.With(
			"module", "queue_source",
			"queue", queue,
		),
	}

	err := source.Validate(ctx)
	if err != nil {
		return nil, err
	}

	return source, nil
}

func (s *Source) Validate(_ context.Context) error {
	if s.Queue == "" {
		return ErrQueueRequired
	}

	return nil
}

func (s *Source) Start(ctx context.Context, callback protocol.EventCallback) error {
	s.logger.InfoContext(ctx, "Starting queue source")
	s.callback = callback

	err := s.initializeClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize queue client: %w", err)
	}

	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) initializeClient(ctx context.Context) error {
	addr := s.Connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	password := s.Connection["password"]
	db := 0

	if dbStr := s.Connection["db"]; dbStr != "" {
		var err error
		if db, err = parseDB(dbStr); err != nil {
			return fmt.Errorf("invalid db value: %w", err)
		}
	}

	s.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return nil
}

func parseDB(dbStr string) (int, error) {
	var db int

	_, err := fmt.Sscanf(dbStr, "%d", &db)

	return db, err
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	s.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			err := s.processMessage(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, 1*time.Second, s.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	event, err := parseEvent([]byte(result[1]))
	if err != nil {
		s.logger.ErrorContext(ctx, "Dropping malformed queue message", "error", err)

		return nil
	}

	go func() {
		err := s.callback(ctx, event)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error dispatching queued event",
				"event_id", event.ID, "error", err)
		}
	}()

	return nil
}

var (
	ErrEventOrganizationRequired = errors.New("event organization_id is required")
	ErrEventCategoryRequired     = errors.New("event category is required")
)

// parseEvent decodes a queue message into an event, filling in the ID and
// occurrence time when the producer omitted them.
func parseEvent(payload []byte) (*models.Event, error) {
	var event models.Event

	err := json.Unmarshal(payload, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	if event.OrganizationID == "" {
		return nil, ErrEventOrganizationRequired
	}

	if event.Category == "" {
		return nil, ErrEventCategoryRequired
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	return &event, nil
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	close(s.stopCh)
	s.wg.Wait()

	if s.client != nil {
		err := s.client.Close()
		if err != nil {
			s.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
