package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name        string
		config      map[string]any
		expectError bool
		errorIs     error
	}{
		{
			name: "valid_redis_config",
			config: map[string]any{
				"provider": "redis",
				"queue":    "events",
				"connection": map[string]any{
					"addr":     "localhost:6379",
					"password": "",
					"db":       "0",
				},
			},
			expectError: false,
		},
		{
			name: "minimal_config",
			config: map[string]any{
				"queue": "events",
			},
			expectError: false,
		},
		{
			name: "missing_queue",
			config: map[string]any{
				"provider": "redis",
			},
			expectError: true,
			errorIs:     ErrQueueRequired,
		},
		{
			name: "unsupported_provider",
			config: map[string]any{
				"provider": "rabbitmq",
				"queue":    "events",
			},
			expectError: true,
			errorIs:     ErrUnsupportedProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := NewSource(context.Background(), tt.config, logger)

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errorIs)
				assert.Nil(t, source)
			} else {
				require.NoError(t, err)
				require.NotNil(t, source)
				assert.Equal(t, "events", source.Queue)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		expectError bool
		errorIs     error
	}{
		{
			name:    "complete_event",
			payload: `{"id":"evt-1","organization_id":"org-1","category":"engagement","name":"purchase","value":100}`,
		},
		{
			name:    "missing_id_and_timestamp_filled_in",
			payload: `{"organization_id":"org-1","category":"engagement"}`,
		},
		{
			name:        "missing_organization",
			payload:     `{"category":"engagement"}`,
			expectError: true,
			errorIs:     ErrEventOrganizationRequired,
		},
		{
			name:        "missing_category",
			payload:     `{"organization_id":"org-1"}`,
			expectError: true,
			errorIs:     ErrEventCategoryRequired,
		},
		{
			name:        "not_json",
			payload:     `purchase happened`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := parseEvent([]byte(tt.payload))

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, event)

				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, event)
			assert.NotEmpty(t, event.ID)
			assert.False(t, event.OccurredAt.IsZero())
			assert.Equal(t, "org-1", event.OrganizationID)
		})
	}
}
