// Package faceswap produces the transformed image for a submission. The
// Client calls the external face-swap HTTP service; the Simulator is the
// offline fallback used when no credential is configured. Both satisfy
// Transformer, so the pipeline never knows which one it holds.
package faceswap

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// Transformer turns a stored original image into a swapped image file.
type Transformer interface {
	Transform(ctx context.Context, sourcePath string) (*Result, error)
}

// Result describes a completed transformation.
type Result struct {
	SwappedPath     string
	SwappedFilename string
	ProcessingTime  int64 // milliseconds
}

// Error taxonomy. Callers display different messages for each class, so
// failures are distinguished by sentinel rather than collapsed into one.
var (
	// ErrNotConfigured means no API credential is set.
	ErrNotConfigured = errors.New("face-swap provider is not configured")
	// ErrService means the provider answered with an error or a
	// malformed payload.
	ErrService = errors.New("face-swap service error")
	// ErrConnectivity means the provider could not be reached or the
	// call timed out.
	ErrConnectivity = errors.New("face-swap service unreachable")
)

// Cleanup best-effort deletes the listed files. Individual failures are
// logged and never propagated; the caller's primary operation must not
// depend on them.
func Cleanup(logger *slog.Logger, paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("cleanup failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
}
