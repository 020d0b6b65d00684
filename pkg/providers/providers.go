// Package providers holds the external delivery collaborators (push,
// WhatsApp, SMS, personalization rules) and the shared per-organization
// client cache.
package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrCredentialsNotFound indicates no credentials are configured for the
// organization and channel.
var ErrCredentialsNotFound = errors.New("provider credentials not found")

// Credentials holds an organization's provider account settings for one
// channel.
type Credentials struct {
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Channel        string `json:"channel"         yaml:"channel"`
	AccountID      string `json:"account_id"      yaml:"account_id"`
	APIKey         string `json:"api_key"         yaml:"api_key"`
	BaseURL        string `json:"base_url"        yaml:"base_url"`

	// DefaultFrom is the sender used when an action resolves no explicit
	// from value (phone number for messaging channels).
	DefaultFrom string `json:"default_from" yaml:"default_from"`
}

// CredentialStore resolves provider credentials per organization and channel.
type CredentialStore interface {
	Get(ctx context.Context, organizationID, channel string) (*Credentials, error)
}

// StaticCredentialStore is an in-memory credential store, used for wiring
// single-tenant deployments and tests.
type StaticCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]*Credentials
}

// NewStaticCredentialStore creates an empty static store.
func NewStaticCredentialStore() *StaticCredentialStore {
	return &StaticCredentialStore{creds: make(map[string]*Credentials)}
}

// Put registers credentials for an organization and channel.
func (s *StaticCredentialStore) Put(creds *Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[creds.OrganizationID+"/"+creds.Channel] = creds
}

// Get implements CredentialStore.
func (s *StaticCredentialStore) Get(_ context.Context, organizationID, channel string) (*Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, ok := s.creds[organizationID+"/"+channel]
	if !ok {
		return nil, ErrCredentialsNotFound
	}

	return creds, nil
}

// ClientCache caches provider client instances keyed by organization and
// channel. Entries are invalidated explicitly when credentials change; no
// TTL applies otherwise.
type ClientCache struct {
	cache *gocache.Cache
}

// NewClientCache creates a client cache.
func NewClientCache() *ClientCache {
	return &ClientCache{
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get returns the cached client for the organization and channel.
func (c *ClientCache) Get(organizationID, channel string) (any, bool) {
	return c.cache.Get(organizationID + "/" + channel)
}

// Set caches a client for the organization and channel.
func (c *ClientCache) Set(organizationID, channel string, client any) {
	c.cache.Set(organizationID+"/"+channel, client, gocache.NoExpiration)
}

// Invalidate removes the cached client, forcing a rebuild with fresh
// credentials on next use.
func (c *ClientCache) Invalidate(organizationID, channel string) {
	c.cache.Delete(organizationID + "/" + channel)
}
