// Package store persists named templates (the template library).
//
// [FileStore] keeps one JSON document per template under a directory and is
// used by the CLI. [MongoStore] keeps templates in a MongoDB collection and
// is used by shared deployments of the HTTP server. Both preserve template
// key order.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/figstyle/pkg/template"
)

// ErrNotFound is returned when no template is stored under a name.
var ErrNotFound = errors.New("template not found")

// Entry is a stored template.
type Entry struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Template   *template.Template `json:"template"`
	SchemaHash string             `json:"schema_hash,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Store is a named template library.
type Store interface {
	// Put stores t under name, replacing any previous template with that
	// name. The entry keeps its ID and creation time across replacements.
	Put(ctx context.Context, name string, t *template.Template, schemaHash string) (*Entry, error)

	// Get returns the entry stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Entry, error)

	// List returns all entries sorted by name.
	List(ctx context.Context) ([]*Entry, error)

	// Delete removes the entry stored under name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	Close() error
}

// newEntry prepares the entry written by Put. prev is the entry being
// replaced, if any.
func newEntry(prev *Entry, name string, t *template.Template, schemaHash string, now time.Time) *Entry {
	e := &Entry{
		ID:         uuid.NewString(),
		Name:       name,
		Template:   t,
		SchemaHash: schemaHash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if prev != nil {
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
	}
	return e
}
