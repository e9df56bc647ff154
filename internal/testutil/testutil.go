// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RequireEnv returns an environment variable or skips the test if missing.
// Used to gate integration tests on real backing services.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// JPEGBytes returns bytes carrying a valid JPEG signature, padded to the
// given total size.
func JPEGBytes(size int) []byte {
	return withSignature([]byte{0xFF, 0xD8, 0xFF, 0xE0}, size)
}

// PNGBytes returns bytes carrying a valid PNG signature, padded to the
// given total size.
func PNGBytes(size int) []byte {
	return withSignature([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, size)
}

func withSignature(sig []byte, size int) []byte {
	if size < len(sig) {
		size = len(sig)
	}
	data := make([]byte, size)
	copy(data, sig)
	return data
}

// WriteFile writes content into dir under name and returns the full path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
