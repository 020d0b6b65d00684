package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCredentialStore(t *testing.T) {
	store := NewStaticCredentialStore()
	store.Put(&Credentials{
		OrganizationID: "org-1",
		Channel:        "sms",
		APIKey:         "key-1",
		DefaultFrom:    "+5511999990000",
	})

	creds, err := store.Get(context.Background(), "org-1", "sms")
	require.NoError(t, err)
	assert.Equal(t, "key-1", creds.APIKey)
	assert.Equal(t, "+5511999990000", creds.DefaultFrom)

	_, err = store.Get(context.Background(), "org-1", "whatsapp")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	_, err = store.Get(context.Background(), "org-2", "sms")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestClientCacheInvalidate(t *testing.T) {
	cache := NewClientCache()

	type fakeClient struct{ key string }

	cache.Set("org-1", "whatsapp", &fakeClient{key: "old"})

	cached, found := cache.Get("org-1", "whatsapp")
	require.True(t, found)
	assert.Equal(t, "old", cached.(*fakeClient).key)

	cache.Invalidate("org-1", "whatsapp")

	_, found = cache.Get("org-1", "whatsapp")
	assert.False(t, found)

	// Other entries are untouched by invalidation.
	cache.Set("org-2", "whatsapp", &fakeClient{key: "other"})
	cache.Invalidate("org-1", "whatsapp")

	_, found = cache.Get("org-2", "whatsapp")
	assert.True(t, found)
}
