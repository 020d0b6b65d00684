// Package audience resolves targeting groups to concrete user IDs.
package audience

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/journeyd/journeyd/pkg/providers"
)

const defaultTimeout = 30 * time.Second

// Resolver expands audience selections into user ID lists.
type Resolver interface {
	AllUserIDs(ctx context.Context, organizationID string) ([]string, error)
	SegmentUserIDs(ctx context.Context, organizationID, segmentID string) ([]string, error)
}

// HTTPResolver queries the audience service of the organization's account.
type HTTPResolver struct {
	credentials providers.CredentialStore
	client      *http.Client
	logger      *slog.Logger
}

// NewHTTPResolver creates an audience resolver backed by the credential store.
func NewHTTPResolver(credentials providers.CredentialStore, logger *slog.Logger) *HTTPResolver {
	return &HTTPResolver{
		credentials: credentials,
		client:      &http.Client{Timeout: defaultTimeout},
		logger:      logger.With("module", "audience_resolver"),
	}
}

type userListResponse struct {
	UserIDs []string `json:"user_ids"`
}

// AllUserIDs implements Resolver.
func (r *HTTPResolver) AllUserIDs(ctx context.Context, organizationID string) ([]string, error) {
	return r.fetch(ctx, organizationID, "/v1/audience/users")
}

// SegmentUserIDs implements Resolver.
func (r *HTTPResolver) SegmentUserIDs(ctx context.Context, organizationID, segmentID string) ([]string, error) {
	path := "/v1/audience/segments/" + url.PathEscape(segmentID) + "/users"

	return r.fetch(ctx, organizationID, path)
}

func (r *HTTPResolver) fetch(ctx context.Context, organizationID, path string) ([]string, error) {
	creds, err := r.credentials.Get(ctx, organizationID, "audience")
	if err != nil {
		return nil, fmt.Errorf("failed to load audience credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create audience request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audience request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audience response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audience service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed userListResponse

	err = json.Unmarshal(bodyBytes, &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audience response: %w", err)
	}

	r.logger.DebugContext(ctx, "Resolved audience", "path", path, "count", len(parsed.UserIDs))

	return parsed.UserIDs, nil
}
