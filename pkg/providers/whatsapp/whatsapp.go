// Package whatsapp provides the WhatsApp message delivery client.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/journeyd/journeyd/pkg/providers"
)

const defaultTimeout = 30 * time.Second

// ErrMissingRecipient is returned when a message has no destination number.
var ErrMissingRecipient = errors.New("whatsapp message has no recipient")

// Message is a single outbound WhatsApp message.
type Message struct {
	To           string            `json:"to"`
	From         string            `json:"from,omitempty"`
	TemplateName string            `json:"template_name,omitempty"`
	Body         string            `json:"body,omitempty"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// SendResult reports the provider outcome for one message.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Client sends WhatsApp messages on behalf of an organization.
type Client interface {
	SendMessage(ctx context.Context, organizationID string, msg *Message) (*SendResult, error)
}

// HTTPClient sends messages through the organization's WhatsApp business
// account API.
type HTTPClient struct {
	credentials providers.CredentialStore
	client      *http.Client
	logger      *slog.Logger
}

// NewHTTPClient creates a WhatsApp client backed by the credential store.
func NewHTTPClient(credentials providers.CredentialStore, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		credentials: credentials,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger.With("module", "whatsapp_client"),
	}
}

type providerResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

// SendMessage implements Client. When msg.From is empty the organization's
// default sender number is used.
func (c *HTTPClient) SendMessage(ctx context.Context, organizationID string, msg *Message) (*SendResult, error) {
	if msg.To == "" {
		return nil, ErrMissingRecipient
	}

	creds, err := c.credentials.Get(ctx, organizationID, "whatsapp")
	if err != nil {
		return nil, fmt.Errorf("failed to load whatsapp credentials: %w", err)
	}

	outbound := *msg
	if outbound.From == "" {
		outbound.From = creds.DefaultFrom
	}

	payload, err := json.Marshal(&outbound)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal whatsapp payload: %w", err)
	}

	url := creds.BaseURL + "/v1/whatsapp/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create whatsapp request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	var parsed providerResponse

	err = json.Unmarshal(bodyBytes, &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse whatsapp response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.WarnContext(ctx, "WhatsApp provider rejected message",
			"status_code", resp.StatusCode, "error", parsed.Error)

		return &SendResult{Success: false, Status: parsed.Status, Error: parsed.Error}, nil
	}

	c.logger.InfoContext(ctx, "WhatsApp message accepted",
		"message_id", parsed.MessageID, "status", parsed.Status)

	return &SendResult{
		Success:   true,
		MessageID: parsed.MessageID,
		Status:    parsed.Status,
	}, nil
}
