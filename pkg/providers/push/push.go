// Package push provides the push notification delivery client.
package push

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

// ErrPushDeliveryFailed is returned when the push provider rejects the send
// request.
var ErrPushDeliveryFailed = errors.New("push delivery failed")

// Notification is the payload delivered to each targeted user.
type Notification struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	ImageURL string         `json:"image_url,omitempty"`
	DeepLink string         `json:"deep_link,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Result summarizes a batch send.
type Result struct {
	SentCount   int      `json:"sent_count"`
	FailedCount int      `json:"failed_count"`
	Errors      []string `json:"errors,omitempty"`
}

// Sender delivers push notifications to users of an organization.
type Sender interface {
	SendToUsers(ctx context.Context, organizationID string, userIDs []string, notification *Notification) (*Result, error)
}

// HTTPSender sends notifications through the organization's configured push
// provider account over HTTP.
type HTTPSender struct {
	credentials providers.CredentialStore
	client      *http.Client
	logger      *slog.Logger
}

// NewHTTPSender creates a push sender backed by the credential store.
func NewHTTPSender(credentials providers.CredentialStore, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		credentials: credentials,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger.With("module", "push_sender"),
	}
}

type sendRequest struct {
	AccountID    string        `json:"account_id"`
	UserIDs      []string      `json:"user_ids"`
	Notification *Notification `json:"notification"`
}

type sendResponse struct {
	SentCount   int      `json:"sent_count"`
	FailedCount int      `json:"failed_count"`
	Errors      []string `json:"errors"`
}

// SendToUsers implements Sender.
func (s *HTTPSender) SendToUsers(
	ctx context.Context,
	organizationID string,
	userIDs []string,
	notification *Notification,
) (*Result, error) {
	creds, err := s.credentials.Get(ctx, organizationID, "push")
	if err != nil {
		return nil, fmt.Errorf("failed to load push credentials: %w", err)
	}

	payload, err := json.Marshal(sendRequest{
		AccountID:    creds.AccountID,
		UserIDs:      userIDs,
		Notification: notification,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	url := creds.BaseURL + "/v1/push/send"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.ErrorContext(ctx, "Push provider returned error",
			"status_code", resp.StatusCode, "body", string(bodyBytes))

		return nil, fmt.Errorf("push provider returned status %d: %w", resp.StatusCode, ErrPushDeliveryFailed)
	}

	var parsed sendResponse

	err = json.Unmarshal(bodyBytes, &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse push response: %w", err)
	}

	s.logger.InfoContext(ctx, "Push batch delivered",
		"sent_count", parsed.SentCount, "failed_count", parsed.FailedCount)

	return &Result{
		SentCount:   parsed.SentCount,
		FailedCount: parsed.FailedCount,
		Errors:      parsed.Errors,
	}, nil
}
