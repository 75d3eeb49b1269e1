package localfs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTripWithNestedPath(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	key := "documents/tenant1/handbook.txt"
	if err := storage.Save(ctx, key, strings.NewReader("employee handbook")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, []byte("employee handbook")) {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestSaveRejectsEscapingPath(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := storage.Save(context.Background(), "../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for escaping path")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Save(ctx, "documents/t/a.txt", strings.NewReader("a")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	keys := []string{"documents/t/a.txt", "documents/t/never-existed.txt"}
	if err := storage.Remove(ctx, keys); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := storage.Remove(ctx, keys); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}

	if _, err := storage.Open(ctx, "documents/t/a.txt"); err == nil {
		t.Fatalf("expected removed file to be gone")
	}
}
