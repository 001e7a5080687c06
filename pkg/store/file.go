package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/template"
)

// FileStore is a file-based template library for CLI use.
// Templates are stored as <name>.json files in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store in baseDir.
// If baseDir is empty, defaults to ~/.config/figstyle/templates/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "figstyle", "templates")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) entryPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) read(name string) (*Entry, error) {
	data, err := os.ReadFile(s.entryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read template file: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	if e.Template == nil {
		e.Template = template.New()
	}
	return &e, nil
}

func (s *FileStore) Put(ctx context.Context, name string, t *template.Template, schemaHash string) (*Entry, error) {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.read(name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	e := newEntry(prev, name, t, schemaHash, time.Now().UTC())

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	if err := os.WriteFile(s.entryPath(name), data, 0644); err != nil {
		return nil, fmt.Errorf("write template file: %w", err)
	}
	return e, nil
}

func (s *FileStore) Get(ctx context.Context, name string) (*Entry, error) {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

func (s *FileStore) List(ctx context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var out []*Entry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		e, err := s.read(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ferrors.ValidateTemplateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.entryPath(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove template file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for template files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
