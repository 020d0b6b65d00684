package sms_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/providers"
	"github.com/journeyd/journeyd/pkg/providers/sms"
)

func newStore(baseURL string) *providers.StaticCredentialStore {
	store := providers.NewStaticCredentialStore()
	store.Put(&providers.Credentials{
		OrganizationID: "org-1",
		Channel:        "sms",
		APIKey:         "test-key",
		BaseURL:        baseURL,
		DefaultFrom:    "+5511988880000",
	})

	return store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestHTTPClient_SendMessage_DefaultFrom(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))

		var msg sms.Message

		require.NoError(t, json.NewDecoder(request.Body).Decode(&msg))
		assert.Equal(t, "+5511988880000", msg.From)
		assert.Equal(t, "+5511977770000", msg.To)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"message_id": "msg-123", "status": "queued"}`))
	}))
	defer server.Close()

	client := sms.NewHTTPClient(newStore(server.URL), testLogger())

	msg := &sms.Message{
		To:   "+5511977770000",
		Body: "Your order shipped",
	}

	result, err := client.SendMessage(context.Background(), "org-1", msg)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "msg-123", result.MessageID)
	assert.Equal(t, "queued", result.Status)

	// The default sender goes on the wire only; the caller's message is
	// left untouched.
	assert.Empty(t, msg.From)
}

func TestHTTPClient_SendMessage_ProviderRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = writer.Write([]byte(`{"status": "rejected", "error": "invalid destination"}`))
	}))
	defer server.Close()

	client := sms.NewHTTPClient(newStore(server.URL), testLogger())

	result, err := client.SendMessage(context.Background(), "org-1", &sms.Message{
		To:   "not-a-number",
		Body: "hello",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid destination", result.Error)
}

func TestHTTPClient_SendMessage_MissingRecipient(t *testing.T) {
	t.Parallel()

	client := sms.NewHTTPClient(newStore("http://localhost"), testLogger())

	_, err := client.SendMessage(context.Background(), "org-1", &sms.Message{Body: "hello"})
	assert.ErrorIs(t, err, sms.ErrMissingRecipient)
}

func TestHTTPClient_SendMessage_MissingCredentials(t *testing.T) {
	t.Parallel()

	client := sms.NewHTTPClient(providers.NewStaticCredentialStore(), testLogger())

	_, err := client.SendMessage(context.Background(), "org-1", &sms.Message{To: "+551100", Body: "x"})
	assert.ErrorIs(t, err, providers.ErrCredentialsNotFound)
}
