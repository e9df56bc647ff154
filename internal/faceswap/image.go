package faceswap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxImageSize is the ceiling re-checked against the stored file, not just
// the upload headers.
const MaxImageSize = 2 << 20 // 2 MiB

// Image pre-check errors, surfaced as client errors at the boundary.
var (
	ErrNotImage      = errors.New("file is not a recognized image")
	ErrImageTooLarge = errors.New("image exceeds the 2MB size limit")
)

// imageSignature pairs a detected format name with its leading bytes.
type imageSignature struct {
	format string
	magic  []byte
}

var imageSignatures = []imageSignature{
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"png", []byte{0x89, 0x50, 0x4E, 0x47}},
	{"gif", []byte{0x47, 0x49, 0x46}},
	{"webp", []byte{0x52, 0x49, 0x46, 0x46}}, // RIFF container
}

// ValidateImage re-reads a stored file and verifies it is an image the
// provider can work with: within the size limit and carrying a known byte
// signature. It returns the detected format name.
func ValidateImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return "", ErrImageTooLarge
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		// An empty file hits plain EOF; too short to carry any signature.
		if errors.Is(err, io.EOF) {
			return "", ErrNotImage
		}
		return "", fmt.Errorf("read image header: %w", err)
	}
	header = header[:n]

	for _, sig := range imageSignatures {
		if len(header) >= len(sig.magic) && bytes.Equal(header[:len(sig.magic)], sig.magic) {
			return sig.format, nil
		}
	}

	return "", ErrNotImage
}
