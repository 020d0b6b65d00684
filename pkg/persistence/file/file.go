// Package file provides file-based persistence for workflows, executions
// and promo codes. It is intended for development and tests; a process-wide
// mutex stands in for the transactional guarantees of a real database.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/journeyd/journeyd/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root          string
	mu            sync.RWMutex
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	promoRepo     *PromoCodeRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is stripped so the root can be passed as a
// database URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflowRepo = &WorkflowRepository{persistence: p}
	p.executionRepo = &ExecutionRepository{persistence: p}
	p.promoRepo = &PromoCodeRepository{persistence: p}

	return p
}

// Workflows returns the workflow repository.
func (p *Persistence) Workflows() persistence.WorkflowRepository {
	return p.workflowRepo
}

// Executions returns the execution repository.
func (p *Persistence) Executions() persistence.ExecutionRepository {
	return p.executionRepo
}

// PromoCodes returns the promo code repository.
func (p *Persistence) PromoCodes() persistence.PromoCodeRepository {
	return p.promoRepo
}

// HealthCheck verifies the root directory exists or can be created.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return os.MkdirAll(p.root, 0o755)
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) writeJSON(subdir, name string, value any) error {
	dir := filepath.Join(p.root, subdir)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", subdir, name, err)
	}

	path := filepath.Join(dir, name+".json")

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (p *Persistence) readJSON(subdir, name string, out any) error {
	path := filepath.Join(p.root, subdir, name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}

		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	return nil
}

func (p *Persistence) listJSON(subdir string) ([]string, error) {
	dir := filepath.Join(p.root, subdir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	return names, nil
}
