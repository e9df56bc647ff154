package faceswap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/faceforge/faceforge/internal/storage"
	"github.com/faceforge/faceforge/internal/testutil"
)

func TestSimulator_Transform(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	content := testutil.JPEGBytes(512)
	source := testutil.WriteFile(t, t.TempDir(), "source.jpg", content)

	sim := NewSimulator(store, 10*time.Millisecond)
	result, err := sim.Transform(context.Background(), source)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if result.ProcessingTime < 10 {
		t.Errorf("expected processing time to cover the delay, got %dms", result.ProcessingTime)
	}
	if !strings.HasPrefix(result.SwappedFilename, "swap-") {
		t.Errorf("unexpected swapped filename %q", result.SwappedFilename)
	}

	stored, err := os.ReadFile(result.SwappedPath)
	if err != nil {
		t.Fatalf("read swapped file: %v", err)
	}
	if string(stored) != string(content) {
		t.Error("simulator must duplicate the source bytes")
	}
}

func TestSimulator_Transform_ContextCancelled(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	source := testutil.WriteFile(t, t.TempDir(), "source.jpg", testutil.JPEGBytes(64))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := NewSimulator(store, time.Minute)
	if _, err := sim.Transform(ctx, source); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSimulator_Transform_MissingSource(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	sim := NewSimulator(store, 0)
	if _, err := sim.Transform(context.Background(), "/nonexistent.jpg"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, dir, "a.jpg", []byte("a"))
	b := testutil.WriteFile(t, dir, "b.jpg", []byte("b"))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Missing and empty paths must not disturb the deletions that can succeed.
	Cleanup(logger, []string{a, "", "/nonexistent/c.jpg", b})

	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected %s to be deleted", path)
		}
	}
}
