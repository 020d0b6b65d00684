package whatsapp_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/whatsapp"
	"github.com/journeyd/journeyd/pkg/models"
	whatsappprovider "github.com/journeyd/journeyd/pkg/providers/whatsapp"
)

type fakeClient struct {
	lastOrgID string
	lastMsg   *whatsappprovider.Message
	result    *whatsappprovider.SendResult
	err       error
}

func (f *fakeClient) SendMessage(
	_ context.Context,
	organizationID string,
	msg *whatsappprovider.Message,
) (*whatsappprovider.SendResult, error) {
	f.lastOrgID = organizationID
	f.lastMsg = msg

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testExecutionContext() models.ExecutionContext {
	workflow := &models.Workflow{ID: "wf-1", OrganizationID: "org-1"}
	event := &models.Event{
		Category: "signup",
		Name:     "user_registered",
		Data: map[string]any{
			"user": map[string]any{
				"phone": "+5511977770000",
				"name":  "Ana",
			},
		},
	}

	return *models.NewExecutionContext("exec-1", workflow, event)
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	_, err := whatsapp.NewAction(map[string]any{"body": "hi"}, &fakeClient{})
	assert.ErrorIs(t, err, whatsapp.ErrToPhoneRequired)

	_, err = whatsapp.NewAction(map[string]any{"to_phone": "+5511900000000"}, &fakeClient{})
	assert.ErrorIs(t, err, whatsapp.ErrMessageContentRequired)

	// A mapping for to_phone satisfies the requirement without a static value.
	_, err = whatsapp.NewAction(map[string]any{
		"body": "hi",
		"variable_mappings": map[string]any{
			"to_phone": "event.user.phone",
		},
	}, &fakeClient{})
	assert.NoError(t, err)
}

func TestAction_Execute_ResolvesMappedPhoneAndBody(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: &whatsappprovider.SendResult{
		Success:   true,
		MessageID: "wamid-1",
		Status:    "sent",
	}}

	action, err := whatsapp.NewAction(map[string]any{
		"body": "Welcome {event.user.name}!",
		"variable_mappings": map[string]any{
			"to_phone": "event.user.phone",
		},
	}, client)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)

	assert.Equal(t, "org-1", client.lastOrgID)
	assert.Equal(t, "+5511977770000", client.lastMsg.To)
	assert.Equal(t, "Welcome Ana!", client.lastMsg.Body)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "wamid-1", result["message_id"])
}

func TestAction_Execute_MissingResolvedPhoneIsHardError(t *testing.T) {
	t.Parallel()

	action, err := whatsapp.NewAction(map[string]any{
		"body": "hi",
		"variable_mappings": map[string]any{
			"to_phone": "event.user.missing_phone",
		},
	}, &fakeClient{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, whatsapp.ErrToPhoneRequired)
}

func TestAction_Execute_UnresolvedPhoneTokenIsHardError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: &whatsappprovider.SendResult{Success: true}}

	action, err := whatsapp.NewAction(map[string]any{
		"to_phone": "{event.user.missing_phone}",
		"body":     "hi",
	}, client)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, whatsapp.ErrToPhoneRequired)
	assert.Nil(t, client.lastMsg)
}

func TestAction_Execute_UnresolvedFromRendersEmpty(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: &whatsappprovider.SendResult{Success: true, Status: "queued"}}

	action, err := whatsapp.NewAction(map[string]any{
		"to_phone":   "+5511900000000",
		"from_phone": "{event.user.business_line}",
		"body":       "hi",
	}, client)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Empty(t, client.lastMsg.From)
}

func TestAction_Execute_TemplateParameters(t *testing.T) {
	t.Parallel()

	client := &fakeClient{result: &whatsappprovider.SendResult{Success: true, Status: "queued"}}

	action, err := whatsapp.NewAction(map[string]any{
		"to_phone":      "+5511900000000",
		"template_name": "welcome_v2",
		"parameters": map[string]any{
			"1": "event.user.name",
		},
	}, client)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "welcome_v2", client.lastMsg.TemplateName)
	assert.Equal(t, "Ana", client.lastMsg.Parameters["1"])
}
