package pushnotification_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/pushnotification"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/providers/push"
)

type fakeSender struct {
	lastUserIDs      []string
	lastNotification *push.Notification
	result           *push.Result
	err              error
}

func (f *fakeSender) SendToUsers(
	_ context.Context,
	_ string,
	userIDs []string,
	notification *push.Notification,
) (*push.Result, error) {
	f.lastUserIDs = userIDs
	f.lastNotification = notification

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

type fakeAudience struct {
	all     []string
	segment map[string][]string
}

func (f *fakeAudience) AllUserIDs(_ context.Context, _ string) ([]string, error) {
	return f.all, nil
}

func (f *fakeAudience) SegmentUserIDs(_ context.Context, _ string, segmentID string) ([]string, error) {
	return f.segment[segmentID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testExecutionContext() models.ExecutionContext {
	workflow := &models.Workflow{ID: "wf-1", OrganizationID: "org-1"}
	event := &models.Event{Category: "purchase", Name: "order_completed", UserID: "user-42"}

	return *models.NewExecutionContext("exec-1", workflow, event)
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  map[string]any
		wantErr error
	}{
		{
			name:    "missing title",
			config:  map[string]any{"body": "hi"},
			wantErr: pushnotification.ErrTitleRequired,
		},
		{
			name: "specific targeting without user ids",
			config: map[string]any{
				"title":        "Sale",
				"target_users": "specific",
			},
			wantErr: pushnotification.ErrUserIDsRequired,
		},
		{
			name: "segment targeting without segment id",
			config: map[string]any{
				"title":        "Sale",
				"target_users": "segment",
			},
			wantErr: pushnotification.ErrSegmentRequired,
		},
		{
			name: "unknown target mode",
			config: map[string]any{
				"title":        "Sale",
				"target_users": "everyone",
			},
			wantErr: pushnotification.ErrTargetModeInvalid,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := pushnotification.NewAction(testCase.config, &fakeSender{}, &fakeAudience{})
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestAction_Execute_SpecificUsers(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{result: &push.Result{SentCount: 2, FailedCount: 0}}

	action, err := pushnotification.NewAction(map[string]any{
		"title":        "Order shipped",
		"body":         "Your order {event.item_name} is on the way",
		"target_users": "specific",
		"user_ids":     []any{"user-1", "user-2"},
	}, sender, &fakeAudience{})
	require.NoError(t, err)

	execCtx := testExecutionContext()
	execCtx.Vars["event"].(map[string]any)["item_name"] = "Sneakers"

	result, err := action.Execute(context.Background(), execCtx, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"user-1", "user-2"}, sender.lastUserIDs)
	assert.Equal(t, "Your order Sneakers is on the way", sender.lastNotification.Body)
	assert.Equal(t, 2, result["sent_count"])
	assert.Equal(t, 0, result["failed_count"])
	assert.Equal(t, 2, result["target_count"])
}

func TestAction_Execute_SegmentAudience(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{result: &push.Result{SentCount: 3}}
	resolver := &fakeAudience{segment: map[string][]string{"vip": {"u1", "u2", "u3"}}}

	action, err := pushnotification.NewAction(map[string]any{
		"title":        "VIP sale",
		"target_users": "segment",
		"segment_id":   "vip",
	}, sender, resolver)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, sender.lastUserIDs)
	assert.Equal(t, 3, result["sent_count"])
}

func TestAction_Execute_EmptyAudienceFails(t *testing.T) {
	t.Parallel()

	action, err := pushnotification.NewAction(map[string]any{
		"title": "Hello",
	}, &fakeSender{}, &fakeAudience{all: nil})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, pushnotification.ErrNoTargetUsers)
}

func TestAction_Execute_VariableMappingOverridesTitle(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{result: &push.Result{SentCount: 1}}

	action, err := pushnotification.NewAction(map[string]any{
		"title":        "Static title",
		"target_users": "specific",
		"user_ids":     []any{"user-1"},
		"variable_mappings": map[string]any{
			"title": "event.name",
		},
	}, sender, &fakeAudience{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "order_completed", sender.lastNotification.Title)
}

func TestAction_Execute_UnresolvedOptionalFieldsRenderEmpty(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{result: &push.Result{SentCount: 1}}

	action, err := pushnotification.NewAction(map[string]any{
		"title":        "Flash sale",
		"body":         "Ends tonight",
		"image_url":    "{event.banner_url}",
		"deep_link":    "{event.deep_link}",
		"target_users": "specific",
		"user_ids":     []any{"user-1"},
	}, sender, &fakeAudience{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Empty(t, sender.lastNotification.ImageURL)
	assert.Empty(t, sender.lastNotification.DeepLink)
}
