package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/plcopy/internal/shared"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Read absent", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "progress.txt"))

		id, ok, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok || id != "" {
			t.Errorf("expected absent checkpoint, got %q", id)
		}
	})

	t.Run("Write then Read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.txt")
		store := NewFileStore(path)

		if err := store.Write(ctx, "dQw4w9WgXcQ"); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		id, ok, err := store.Read(ctx)
		if err != nil || !ok || id != "dQw4w9WgXcQ" {
			t.Fatalf("expected dQw4w9WgXcQ, got %q ok=%v err=%v", id, ok, err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(raw) != "dQw4w9WgXcQ" {
			t.Errorf("expected bare identifier on disk, got %q", raw)
		}
	})

	t.Run("Write overwrites", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "progress.txt"))

		for _, id := range []string{"A", "B", "C"} {
			if err := store.Write(ctx, id); err != nil {
				t.Fatalf("failed to write %s: %v", id, err)
			}
			got, _, _ := store.Read(ctx)
			if got != id {
				t.Errorf("expected %s after write, got %s", id, got)
			}
		}
	})

	t.Run("Write leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileStore(filepath.Join(dir, "progress.txt"))

		if err := store.Write(ctx, "A"); err != nil {
			t.Fatalf("failed to write: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to list dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "progress.txt" {
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("expected only progress.txt, got %v", names)
		}
	})

	t.Run("Write rejects empty id", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "progress.txt"))
		if err := store.Write(ctx, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Write into missing directory fails", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "missing", "progress.txt"))
		if err := store.Write(ctx, "A"); !errors.Is(err, shared.ErrCheckpointIO) {
			t.Errorf("expected ErrCheckpointIO, got %v", err)
		}
	})

	t.Run("Read trims whitespace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.txt")
		if err := os.WriteFile(path, []byte("  abc123\n"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		id, ok, err := NewFileStore(path).Read(ctx)
		if err != nil || !ok || id != "abc123" {
			t.Errorf("expected abc123, got %q ok=%v err=%v", id, ok, err)
		}
	})

	t.Run("Read blank file is absent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.txt")
		if err := os.WriteFile(path, []byte("\n"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if _, ok, err := NewFileStore(path).Read(ctx); err != nil || ok {
			t.Errorf("expected absent checkpoint, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.txt")
		store := NewFileStore(path)

		if err := store.Write(ctx, "A"); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected checkpoint file to be removed, stat err=%v", err)
		}

		t.Run("absent is not an error", func(t *testing.T) {
			if err := store.Clear(ctx); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("Lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progress.txt")
		first := NewFileStore(path)
		second := NewFileStore(path)

		if err := first.Lock(); err != nil {
			t.Fatalf("failed to lock: %v", err)
		}

		if err := second.Lock(); !errors.Is(err, shared.ErrCheckpointLocked) {
			t.Errorf("expected ErrCheckpointLocked, got %v", err)
		}

		if err := first.Unlock(); err != nil {
			t.Fatalf("failed to unlock: %v", err)
		}

		if err := second.Lock(); err != nil {
			t.Errorf("expected lock after release, got %v", err)
		}
		second.Unlock()
	})
}
