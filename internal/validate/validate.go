// Package validate checks raw form input against the submission rules.
// All violations are collected rather than failing fast, so the caller can
// show every problem at once and echo the sanitized values back into the form.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/faceforge/faceforge/internal/model"
	"github.com/faceforge/faceforge/internal/sanitize"
)

// Field limits.
const (
	MinNameLength = 4
	MaxNameLength = 30
	PhoneDigits   = 10
	MaxFileSize   = 2 << 20 // 2 MiB
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// allowedMIMETypes for the uploaded image.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// RawFields carries the form values exactly as submitted.
type RawFields struct {
	Name  string
	Email string
	Phone string
	Terms string
}

// Fields is the normalized field set produced on success.
type Fields struct {
	Name          string
	Email         string
	Phone         string
	TermsAccepted bool
}

// FileInfo describes the uploaded file as seen by the validator.
type FileInfo struct {
	MIMEType string
	Size     int64
}

// Invalid is returned when one or more rules are violated. Messages are in
// field order; Echo holds the best-effort sanitized values for re-populating
// the form.
type Invalid struct {
	Messages []string
	Echo     RawFields
}

// Error implements the error interface, joining all messages for display.
func (inv *Invalid) Error() string {
	return strings.Join(inv.Messages, ". ")
}

// Submission validates the raw fields and the attached file. It returns
// either the normalized fields or a non-empty Invalid, never both.
func Submission(raw RawFields, file *FileInfo) (Fields, *Invalid) {
	name := sanitize.Field(raw.Name)
	email := strings.ToLower(sanitize.Field(raw.Email))
	phone := sanitize.Field(raw.Phone)

	var messages []string

	switch {
	case name == "":
		messages = append(messages, "Name is required")
	case len(name) < MinNameLength || len(name) > MaxNameLength:
		messages = append(messages, fmt.Sprintf("Name must be between %d and %d characters", MinNameLength, MaxNameLength))
	case !namePattern.MatchString(name):
		messages = append(messages, "Name can only contain letters and spaces")
	}

	switch {
	case email == "":
		messages = append(messages, "Email is required")
	case !emailPattern.MatchString(email):
		messages = append(messages, "Please provide a valid email address")
	}

	switch {
	case phone == "":
		messages = append(messages, "Phone number is required")
	case !phonePattern.MatchString(phone):
		messages = append(messages, fmt.Sprintf("Phone number must be exactly %d digits", PhoneDigits))
	}

	terms := isTruthy(raw.Terms)
	if !terms {
		messages = append(messages, "You must accept the terms and conditions")
	}

	switch {
	case file == nil:
		messages = append(messages, "An image file is required")
	case !allowedMIMETypes[strings.ToLower(file.MIMEType)]:
		messages = append(messages, "Only JPEG and PNG images are allowed")
	case file.Size > MaxFileSize:
		messages = append(messages, "Image must be 2MB or smaller")
	}

	if len(messages) > 0 {
		return Fields{}, &Invalid{
			Messages: messages,
			Echo:     RawFields{Name: name, Email: email, Phone: phone, Terms: raw.Terms},
		}
	}

	return Fields{
		Name:          name,
		Email:         email,
		Phone:         phone,
		TermsAccepted: true,
	}, nil
}

// isTruthy interprets checkbox-style form values.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// ID reports whether s is a well-formed submission identifier. Malformed
// ids are rejected here, before any store query.
func ID(s string) bool {
	return model.IsValidID(s)
}
