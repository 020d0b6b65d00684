// Package schedule provides a cron-driven event source that emits recurring
// campaign events, e.g. a weekly re-engagement push.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
)

var (
	ErrCronRequired         = errors.New("schedule source cron expression is required")
	ErrOrganizationRequired = errors.New("schedule source organization_id is required")
)

const defaultCategory = "campaign"

// Source emits a synthetic event on every cron tick. The event carries the
// configured category, name and data so workflows can trigger on it like on
// any inbound event.
type Source struct {
	CronExpr       string
	OrganizationID string
	Category       string
	EventName      string
	Data           map[string]any

	cron     *cron.Cron
	callback protocol.EventCallback
	logger   *slog.Logger
}

// NewSource creates a schedule source from configuration.
func NewSource(config map[string]any, logger *slog.Logger) (*Source, error) {
	cronExpr, _ := config["cron"].(string)
	organizationID, _ := config["organization_id"].(string)

	category, _ := config["category"].(string)
	if category == "" {
		category = defaultCategory
	}

	eventName, _ := config["event_name"].(string)
	data, _ := config["data"].(map[string]any)

	source := &Source{
		CronExpr:       cronExpr,
		OrganizationID: organizationID,
		Category:       category,
		EventName:      eventName,
		Data:           data,
		logger: logger.With(
			"module", "schedule_source",
			"cron", cronExpr,
			"organization_id", organizationID,
		),
	}

	err := source.Validate(context.Background())
	if err != nil {
		return nil, err
	}

	return source, nil
}

func (s *Source) Validate(_ context.Context) error {
	if s.CronExpr == "" {
		return ErrCronRequired
	}

	if s.OrganizationID == "" {
		return ErrOrganizationRequired
	}

	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

func (s *Source) Start(ctx context.Context, callback protocol.EventCallback) error {
	s.logger.InfoContext(ctx, "Starting schedule source")
	s.callback = callback

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := s.cron.AddFunc(s.CronExpr, s.emit)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.logger.InfoContext(ctx, "Added cron job", "entry_id", id)
	s.cron.Start()

	return nil
}

func (s *Source) emit() {
	event := s.buildEvent()

	s.logger.Info("Emitting scheduled event", "event_id", event.ID)

	go func() {
		err := s.callback(context.Background(), event)
		if err != nil {
			s.logger.Error("Error dispatching scheduled event",
				"event_id", event.ID, "error", err)
		}
	}()
}

func (s *Source) buildEvent() *models.Event {
	return &models.Event{
		ID:             uuid.NewString(),
		OrganizationID: s.OrganizationID,
		Category:       s.Category,
		Name:           s.EventName,
		Data:           s.Data,
		OccurredAt:     time.Now().UTC(),
	}
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping schedule source")

	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}
