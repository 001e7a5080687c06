package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/template"
)

func mustTemplate(t *testing.T, src string) *template.Template {
	t.Helper()
	tmpl, err := template.Parse([]byte(src))
	if err != nil {
		t.Fatalf("template.Parse: %v", err)
	}
	return tmpl
}

// testStore runs the behaviour shared by every Store implementation.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Get(ctx, "corporate"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	src := `{"data":{"bar":[{"marker":{"color":"navy"}}]},"layout":{"font":{"size":11,"family":"Inter"}}}`
	first, err := s.Put(ctx, "corporate", mustTemplate(t, src), "abc")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if first.ID == "" {
		t.Error("Put should assign an ID")
	}

	got, err := s.Get(ctx, "corporate")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := got.Template.MarshalJSON()
	if diff := cmp.Diff(src, string(body)); diff != "" {
		t.Errorf("stored template changed (-want +got):\n%s", diff)
	}
	if got.SchemaHash != "abc" {
		t.Errorf("SchemaHash = %q, want abc", got.SchemaHash)
	}

	time.Sleep(2 * time.Millisecond)
	second, err := s.Put(ctx, "corporate", mustTemplate(t, `{"layout":{"font":{"size":12}}}`), "abc")
	if err != nil {
		t.Fatalf("Put (replace): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement changed ID: %s -> %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("replacement changed CreatedAt: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt should advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}

	if _, err := s.Put(ctx, "agency", template.New(), ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range list {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"agency", "corporate"}, names); diff != "" {
		t.Errorf("List names (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, "corporate"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "corporate"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}

	if _, err := s.Put(ctx, "../escape", template.New(), ""); !ferrors.Is(err, ferrors.ErrCodeInvalidName) {
		t.Errorf("Put with invalid name error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(dir+"/notes.txt", []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir+"/broken.json", []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List should skip unreadable entries, got %d", len(list))
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FIGSTYLE_TEST_MONGO")
	if uri == "" {
		t.Skip("FIGSTYLE_TEST_MONGO not set")
	}
	ctx := context.Background()
	db := "figstyle_test_" + time.Now().Format("20060102150405")
	s, err := NewMongoStore(ctx, uri, db)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.client.Database(db).Drop(ctx)
		_ = s.Close()
	}()
	testStore(t, s)
}
