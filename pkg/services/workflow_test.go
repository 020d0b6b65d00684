package services_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/condition"
	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/persistence/file"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/services"
)

func newService(t *testing.T) *services.Workflow {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(condition.NewActionFactory(expression.NewEngine()))

	return services.NewWorkflow(file.NewPersistence(t.TempDir()), reg)
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:           "VIP purchase follow-up",
		OrganizationID: "org-1",
		Trigger: models.TriggerConfig{
			EventType: "engagement",
		},
		Actions: []*models.ActionItem{
			{
				ID:   "act-1",
				Type: models.ActionTypeCondition,
				Name: "High value check",
				Configuration: map[string]any{
					"expression": "event.value > 100",
				},
			},
		},
	}
}

func TestWorkflow_Create(t *testing.T) {
	t.Parallel()

	service := newService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusInactive, created.Status, "new workflows start paused")
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestWorkflow_Create_Validation(t *testing.T) {
	t.Parallel()

	service := newService(t)

	tests := []struct {
		name    string
		mutate  func(*models.Workflow)
		errorIs error
	}{
		{
			name:    "missing_organization",
			mutate:  func(w *models.Workflow) { w.OrganizationID = "" },
			errorIs: services.ErrOrganizationRequired,
		},
		{
			name:    "missing_trigger_event_type",
			mutate:  func(w *models.Workflow) { w.Trigger.EventType = "" },
			errorIs: services.ErrTriggerRequired,
		},
		{
			name:    "unknown_action_type",
			mutate:  func(w *models.Workflow) { w.Actions[0].Type = "carrier_pigeon" },
			errorIs: services.ErrActionTypeUnknown,
		},
		{
			name:    "bogus_status",
			mutate:  func(w *models.Workflow) { w.Status = "sleeping" },
			errorIs: services.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow := validWorkflow()
			tt.mutate(workflow)

			_, err := service.Create(t.Context(), workflow)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.errorIs)
			assert.True(t, services.IsValidationError(err))
		})
	}
}

func TestWorkflow_Update_PreservesCreatedAt(t *testing.T) {
	t.Parallel()

	service := newService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	changed := validWorkflow()
	changed.Name = "Renamed follow-up"
	changed.Status = models.WorkflowStatusActive

	updated, err := service.Update(t.Context(), created.ID, changed)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)
}

func TestWorkflow_Update_NotFound(t *testing.T) {
	t.Parallel()

	service := newService(t)

	_, err := service.Update(t.Context(), "ghost", validWorkflow())
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflow_Delete(t *testing.T) {
	t.Parallel()

	service := newService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	err = service.Delete(t.Context(), created.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflow_ListWorkflows(t *testing.T) {
	t.Parallel()

	service := newService(t)

	for range 3 {
		workflow := validWorkflow()
		_, err := service.Create(t.Context(), workflow)
		require.NoError(t, err)
	}

	other := validWorkflow()
	other.OrganizationID = "org-2"
	_, err := service.Create(t.Context(), other)
	require.NoError(t, err)

	result, err := service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Len(t, result.Workflows, 3)
	assert.False(t, result.HasNextPage)

	paged, err := service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{
		OrganizationID: "org-1",
		Limit:          2,
	})
	require.NoError(t, err)
	assert.Len(t, paged.Workflows, 2)
	assert.True(t, paged.HasNextPage)

	bogus := models.WorkflowStatus("sleeping")
	_, err = service.ListWorkflows(t.Context(), services.ListWorkflowsRequest{Status: &bogus})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
}
