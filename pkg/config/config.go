// Package config loads the deployment configuration file: provider
// credentials per organization and the event sources a runner process hosts.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/journeyd/journeyd/pkg/providers"
)

// SourceConfig declares one event source a runner hosts.
type SourceConfig struct {
	Type          string         `yaml:"type"`
	Name          string         `yaml:"name"`
	Configuration map[string]any `yaml:"configuration"`
}

// File is the root of the deployment configuration.
type File struct {
	Credentials []providers.Credentials `yaml:"credentials"`
	Sources     []SourceConfig          `yaml:"sources"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &file, nil
}

// CredentialStore builds an in-memory credential store from the configured
// credentials.
func (f *File) CredentialStore() *providers.StaticCredentialStore {
	store := providers.NewStaticCredentialStore()

	for i := range f.Credentials {
		creds := f.Credentials[i]
		store.Put(&creds)
	}

	return store
}
