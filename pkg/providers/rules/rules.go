// Package rules provides the personalization rules API client.
package rules

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

// ErrRuleRejected is returned when the rules API refuses the payload.
var ErrRuleRejected = errors.New("personalization rule rejected")

// RuleCondition is one predicate inside a personalization rule.
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Rule is the payload submitted to the personalization service.
type Rule struct {
	Name       string          `json:"name"`
	Trigger    string          `json:"trigger"`
	Conditions []RuleCondition `json:"conditions"`
	Content    map[string]any  `json:"content,omitempty"`
	Placement  string          `json:"placement,omitempty"`
	Priority   int             `json:"priority,omitempty"`
}

// Client creates personalization rules on behalf of an organization.
type Client interface {
	CreateRule(ctx context.Context, organizationID string, rule *Rule) (string, error)
}

// HTTPClient submits rules to the organization's personalization service.
type HTTPClient struct {
	credentials providers.CredentialStore
	client      *http.Client
	logger      *slog.Logger
}

// NewHTTPClient creates a rules client backed by the credential store.
func NewHTTPClient(credentials providers.CredentialStore, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		credentials: credentials,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger.With("module", "rules_client"),
	}
}

type createResponse struct {
	RuleID string `json:"rule_id"`
	Error  string `json:"error"`
}

// CreateRule implements Client and returns the created rule's ID.
func (c *HTTPClient) CreateRule(ctx context.Context, organizationID string, rule *Rule) (string, error) {
	creds, err := c.credentials.Get(ctx, organizationID, "personalization")
	if err != nil {
		return "", fmt.Errorf("failed to load personalization credentials: %w", err)
	}

	payload, err := json.Marshal(rule)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rule payload: %w", err)
	}

	url := creds.BaseURL + "/v1/personalization/rules"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create rule request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rule request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read rules response: %w", err)
	}

	var parsed createResponse

	err = json.Unmarshal(bodyBytes, &parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse rules response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || parsed.RuleID == "" {
		c.logger.ErrorContext(ctx, "Personalization rule rejected",
			"status_code", resp.StatusCode, "error", parsed.Error)

		return "", fmt.Errorf("rules API returned status %d: %w", resp.StatusCode, ErrRuleRejected)
	}

	c.logger.InfoContext(ctx, "Personalization rule created", "rule_id", parsed.RuleID)

	return parsed.RuleID, nil
}
