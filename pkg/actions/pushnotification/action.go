// Package pushnotification provides the push notification workflow action.
package pushnotification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/providers/audience"
	"github.com/journeyd/journeyd/pkg/providers/push"
)

// Targeting modes for TargetUsers.
const (
	TargetAll      = "all"
	TargetSegment  = "segment"
	TargetSpecific = "specific"
)

var (
	// ErrTitleRequired is returned when the notification has no title.
	ErrTitleRequired = errors.New("notification title is required")
	// ErrUserIDsRequired is returned for specific targeting with no user list.
	ErrUserIDsRequired = errors.New("user IDs required for specific targeting")
	// ErrSegmentRequired is returned for segment targeting with no segment ID.
	ErrSegmentRequired = errors.New("segment ID required for segment targeting")
	// ErrTargetModeInvalid is returned for an unknown targeting mode.
	ErrTargetModeInvalid = errors.New("invalid target users mode")
	// ErrNoTargetUsers is returned when targeting resolves to zero users.
	ErrNoTargetUsers = errors.New("no target users resolved")
)

// Action sends a push notification to the resolved target audience.
type Action struct {
	ID               string
	Title            string
	Body             string
	ImageURL         string
	DeepLink         string
	Data             map[string]any
	TargetUsers      string
	SegmentID        string
	UserIDs          []string
	VariableMappings map[string]string

	sender   push.Sender
	audience audience.Resolver
}

// NewAction creates a push notification action from configuration.
func NewAction(config map[string]any, sender push.Sender, resolver audience.Resolver) (*Action, error) {
	actionID, _ := config["id"].(string)

	title, _ := config["title"].(string)
	if title == "" {
		return nil, fmt.Errorf("missing 'title' in configuration: %w", ErrTitleRequired)
	}

	body, _ := config["body"].(string)
	imageURL, _ := config["image_url"].(string)
	deepLink, _ := config["deep_link"].(string)
	data, _ := config["data"].(map[string]any)

	targetUsers, _ := config["target_users"].(string)
	if targetUsers == "" {
		targetUsers = TargetAll
	}

	segmentID, _ := config["segment_id"].(string)
	userIDs := stringSlice(config["user_ids"])

	switch targetUsers {
	case TargetAll:
	case TargetSegment:
		if segmentID == "" {
			return nil, fmt.Errorf("missing 'segment_id' in configuration: %w", ErrSegmentRequired)
		}
	case TargetSpecific:
		if len(userIDs) == 0 {
			return nil, ErrUserIDsRequired
		}
	default:
		return nil, fmt.Errorf("unknown target mode %q: %w", targetUsers, ErrTargetModeInvalid)
	}

	return &Action{
		ID:               actionID,
		Title:            title,
		Body:             body,
		ImageURL:         imageURL,
		DeepLink:         deepLink,
		Data:             data,
		TargetUsers:      targetUsers,
		SegmentID:        segmentID,
		UserIDs:          userIDs,
		VariableMappings: stringMap(config["variable_mappings"]),
		sender:           sender,
		audience:         resolver,
	}, nil
}

// Execute resolves the target audience and delivers the notification.
func (a *Action) Execute(
	ctx context.Context,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error) {
	logger = logger.With("module", "push_notification_action")
	logger.InfoContext(ctx, "Executing push notification action", "target_users", a.TargetUsers)

	userIDs, err := a.resolveTargets(ctx, executionCtx)
	if err != nil {
		return nil, err
	}

	if len(userIDs) == 0 {
		return nil, ErrNoTargetUsers
	}

	env := executionCtx.Env()
	fields := expression.ResolveMappings(a.VariableMappings, env, map[string]any{
		"title":     a.Title,
		"body":      a.Body,
		"image_url": a.ImageURL,
		"deep_link": a.DeepLink,
	})

	notification := &push.Notification{
		Title:    expression.AsString(fields["title"]),
		Body:     expression.AsString(fields["body"]),
		ImageURL: expression.AsString(fields["image_url"]),
		DeepLink: expression.AsString(fields["deep_link"]),
		Data:     a.Data,
	}

	result, err := a.sender.SendToUsers(ctx, executionCtx.OrganizationID, userIDs, notification)
	if err != nil {
		return nil, fmt.Errorf("push delivery failed: %w", err)
	}

	logger.InfoContext(ctx, "Push notification delivered",
		"sent_count", result.SentCount, "failed_count", result.FailedCount)

	return map[string]any{
		"sent_count":   result.SentCount,
		"failed_count": result.FailedCount,
		"errors":       result.Errors,
		"target_count": len(userIDs),
	}, nil
}

// Validate checks the action configuration.
func (a *Action) Validate(_ context.Context) error {
	if a.Title == "" {
		return ErrTitleRequired
	}

	if a.TargetUsers == TargetSpecific && len(a.UserIDs) == 0 {
		return ErrUserIDsRequired
	}

	if a.TargetUsers == TargetSegment && a.SegmentID == "" {
		return ErrSegmentRequired
	}

	return nil
}

func (a *Action) resolveTargets(ctx context.Context, executionCtx models.ExecutionContext) ([]string, error) {
	switch a.TargetUsers {
	case TargetAll:
		userIDs, err := a.audience.AllUserIDs(ctx, executionCtx.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve full audience: %w", err)
		}

		return userIDs, nil
	case TargetSegment:
		userIDs, err := a.audience.SegmentUserIDs(ctx, executionCtx.OrganizationID, a.SegmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve segment %q: %w", a.SegmentID, err)
		}

		return userIDs, nil
	case TargetSpecific:
		if len(a.UserIDs) == 0 {
			return nil, ErrUserIDsRequired
		}

		return a.UserIDs, nil
	default:
		return nil, fmt.Errorf("unknown target mode %q: %w", a.TargetUsers, ErrTargetModeInvalid)
	}
}

func stringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		result := make([]string, 0, len(typed))

		for _, item := range typed {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}

		return result
	default:
		return nil
	}
}

func stringMap(value any) map[string]string {
	result := make(map[string]string)

	raw, ok := value.(map[string]any)
	if !ok {
		return result
	}

	for k, v := range raw {
		if str, ok := v.(string); ok {
			result[k] = str
		}
	}

	return result
}
