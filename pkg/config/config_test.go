package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journeyd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
credentials:
  - organization_id: org-1
    channel: sms
    account_id: acct-1
    api_key: secret
    base_url: https://sms.example.com
    default_from: "+15550001111"
sources:
  - type: schedule
    name: weekly-digest
    configuration:
      cron: "0 9 * * 1"
      organization_id: org-1
      event_name: weekly_digest
`)

	file, err := config.Load(path)
	require.NoError(t, err)

	require.Len(t, file.Credentials, 1)
	assert.Equal(t, "org-1", file.Credentials[0].OrganizationID)
	assert.Equal(t, "https://sms.example.com", file.Credentials[0].BaseURL)

	require.Len(t, file.Sources, 1)
	assert.Equal(t, "schedule", file.Sources[0].Type)
	assert.Equal(t, "0 9 * * 1", file.Sources[0].Configuration["cron"])
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "credentials: [}")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestFile_CredentialStore(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
credentials:
  - organization_id: org-1
    channel: push
    api_key: push-key
  - organization_id: org-1
    channel: whatsapp
    api_key: wa-key
`)

	file, err := config.Load(path)
	require.NoError(t, err)

	store := file.CredentialStore()

	creds, err := store.Get(context.Background(), "org-1", "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, "wa-key", creds.APIKey)

	_, err = store.Get(context.Background(), "org-2", "push")
	require.Error(t, err)
}
