package faceswap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/faceforge/faceforge/internal/storage"
)

// Simulator is the offline Transformer used when no provider credential is
// configured. It duplicates the source bytes into the swapped area after an
// artificial delay, so the whole pipeline is exercisable without a live
// external dependency.
type Simulator struct {
	store *storage.Store
	delay time.Duration
}

// NewSimulator creates a Simulator with the given artificial delay.
func NewSimulator(store *storage.Store, delay time.Duration) *Simulator {
	return &Simulator{store: store, delay: delay}
}

// Transform copies the source image into the swapped area as a stand-in
// result. Honors context cancellation during the artificial delay.
func (s *Simulator) Transform(ctx context.Context, sourcePath string) (*Result, error) {
	start := time.Now()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source image: %w", err)
	}
	defer src.Close()

	name := s.store.NewSwappedName(filepath.Ext(sourcePath))
	path, _, err := s.store.WriteSwapped(name, src)
	if err != nil {
		return nil, fmt.Errorf("store swapped image: %w", err)
	}

	return &Result{
		SwappedPath:     path,
		SwappedFilename: name,
		ProcessingTime:  time.Since(start).Milliseconds(),
	}, nil
}
