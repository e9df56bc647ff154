// Package upload receives the single multipart image file for a submission
// and writes it into the original storage area under a generated name.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/faceforge/faceforge/internal/storage"
)

// FieldName is the only form field a file may arrive on.
const FieldName = "image"

// Form limits. The text-field caps defend against form flooding; the real
// field rules are enforced by the validator afterwards.
const (
	DefaultMaxFileSize = 2 << 20 // 2 MiB
	maxParseMemory     = 4 << 20
	maxTextFields      = 20
	maxTextFieldSize   = 4 << 10 // 4 KiB per text field
)

// Upload errors, mapped to 400 responses at the boundary.
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrTooManyFiles    = errors.New("only one file may be uploaded")
	ErrUnexpectedField = errors.New("file uploaded on an unexpected field")
	ErrUnsupportedType = errors.New("only JPEG and PNG images are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the 2MB size limit")
	ErrTooManyFields   = errors.New("too many form fields")
	ErrFieldTooLarge   = errors.New("form field exceeds size limit")
	ErrMalformedForm   = errors.New("malformed multipart form")
)

// allowedTypes maps acceptable declared MIME types to a canonical extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// allowedExtensions for the client-supplied filename.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Upload describes a file accepted into the original storage area.
type Upload struct {
	Path         string
	Filename     string
	OriginalName string
	MIMEType     string
	Size         int64
}

// Handler accepts multipart uploads and persists them through the store.
type Handler struct {
	store       *storage.Store
	maxFileSize int64
}

// NewHandler creates an upload Handler. maxFileSize <= 0 selects the default.
func NewHandler(store *storage.Store, maxFileSize int64) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Handler{store: store, maxFileSize: maxFileSize}
}

// Process extracts exactly one file from the request's multipart form,
// enforces the type and size limits, and writes it to durable storage.
// Nothing is persisted when any check fails.
func (h *Handler) Process(r *http.Request) (*Upload, error) {
	if err := r.ParseMultipartForm(maxParseMemory); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}

	form := r.MultipartForm
	if form == nil {
		return nil, ErrMalformedForm
	}

	if err := checkTextFields(form); err != nil {
		return nil, err
	}

	header, err := singleFile(form)
	if err != nil {
		return nil, err
	}

	if header.Size > h.maxFileSize {
		return nil, ErrFileTooLarge
	}

	mimeType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedTypes[mimeType]; !ok {
		return nil, ErrUnsupportedType
	}
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	name := h.store.NewOriginalName(ext)
	path, size, err := h.store.WriteOriginal(name, src)
	if err != nil {
		return nil, fmt.Errorf("store uploaded file: %w", err)
	}

	return &Upload{
		Path:         path,
		Filename:     name,
		OriginalName: header.Filename,
		MIMEType:     mimeType,
		Size:         size,
	}, nil
}

// singleFile returns the one file header on the expected field, rejecting
// extra files and files on any other field.
func singleFile(form *multipart.Form) (*multipart.FileHeader, error) {
	for field, headers := range form.File {
		if field != FieldName && len(headers) > 0 {
			return nil, ErrUnexpectedField
		}
	}

	headers := form.File[FieldName]
	switch {
	case len(headers) == 0:
		return nil, ErrNoFile
	case len(headers) > 1:
		return nil, ErrTooManyFiles
	}
	return headers[0], nil
}

func checkTextFields(form *multipart.Form) error {
	count := 0
	for _, values := range form.Value {
		for _, v := range values {
			count++
			if len(v) > maxTextFieldSize {
				return ErrFieldTooLarge
			}
		}
	}
	if count > maxTextFields {
		return ErrTooManyFields
	}
	return nil
}
