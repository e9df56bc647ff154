package validate

import (
	"strings"
	"testing"
)

func validFile() *FileInfo {
	return &FileInfo{MIMEType: "image/jpeg", Size: 10 * 1024}
}

func validRaw() RawFields {
	return RawFields{
		Name:  "John Doe",
		Email: "JOHN@EXAMPLE.COM",
		Phone: "1234567890",
		Terms: "on",
	}
}

func TestSubmission_Valid(t *testing.T) {
	fields, inv := Submission(validRaw(), validFile())
	if inv != nil {
		t.Fatalf("expected no violations, got %v", inv.Messages)
	}

	if fields.Name != "John Doe" {
		t.Errorf("expected name John Doe, got %q", fields.Name)
	}
	if fields.Email != "john@example.com" {
		t.Errorf("expected lowercased email, got %q", fields.Email)
	}
	if fields.Phone != "1234567890" {
		t.Errorf("expected phone preserved, got %q", fields.Phone)
	}
	if !fields.TermsAccepted {
		t.Error("expected terms coerced to true")
	}
}

func TestSubmission_NameRules(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"too_short", "Al", "between 4 and 30"},
		{"min_length", "Alan", ""},
		{"max_length", strings.Repeat("a", 30), ""},
		{"too_long", strings.Repeat("a", 31), "between 4 and 30"},
		{"digits", "John 2nd", "letters and spaces"},
		{"punctuation", "O'Brien", "letters and spaces"},
		{"missing", "", "Name is required"},
		{"markup_only", "<b></b>", "Name is required"},
		{"markup_stripped", "<b>John Doe</b>", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := validRaw()
			raw.Name = test.value
			_, inv := Submission(raw, validFile())
			assertViolation(t, inv, test.wantErr)
		})
	}
}

func TestSubmission_EmailRules(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"valid", "a.b+c@example.co.uk", ""},
		{"missing", "", "Email is required"},
		{"no_at", "example.com", "valid email"},
		{"no_tld", "user@example", "valid email"},
		{"spaces", "user name@example.com", "valid email"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := validRaw()
			raw.Email = test.value
			_, inv := Submission(raw, validFile())
			assertViolation(t, inv, test.wantErr)
		})
	}
}

func TestSubmission_PhoneRules(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"valid", "0123456789", ""},
		{"missing", "", "Phone number is required"},
		{"nine_digits", "123456789", "exactly 10 digits"},
		{"eleven_digits", "12345678901", "exactly 10 digits"},
		// Formatted input is rejected, not auto-stripped.
		{"dashes", "123-456-7890", "exactly 10 digits"},
		{"plus_prefix", "+1234567890", "exactly 10 digits"},
		{"letters", "12345abcde", "exactly 10 digits"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := validRaw()
			raw.Phone = test.value
			_, inv := Submission(raw, validFile())
			assertViolation(t, inv, test.wantErr)
		})
	}
}

func TestSubmission_Terms(t *testing.T) {
	for _, truthy := range []string{"on", "true", "1", "yes", "TRUE"} {
		raw := validRaw()
		raw.Terms = truthy
		if _, inv := Submission(raw, validFile()); inv != nil {
			t.Errorf("terms %q should be accepted: %v", truthy, inv.Messages)
		}
	}

	for _, falsy := range []string{"", "off", "false", "0", "no"} {
		raw := validRaw()
		raw.Terms = falsy
		_, inv := Submission(raw, validFile())
		assertViolation(t, inv, "accept the terms")
	}
}

func TestSubmission_FileRules(t *testing.T) {
	tests := []struct {
		name    string
		file    *FileInfo
		wantErr string
	}{
		{"jpeg", &FileInfo{MIMEType: "image/jpeg", Size: 1024}, ""},
		{"png", &FileInfo{MIMEType: "image/png", Size: 1024}, ""},
		{"missing", nil, "image file is required"},
		{"gif", &FileInfo{MIMEType: "image/gif", Size: 1024}, "JPEG and PNG"},
		{"pdf", &FileInfo{MIMEType: "application/pdf", Size: 1024}, "JPEG and PNG"},
		{"exactly_2mib", &FileInfo{MIMEType: "image/png", Size: 2 << 20}, ""},
		{"over_2mib", &FileInfo{MIMEType: "image/png", Size: 2<<20 + 1}, "2MB or smaller"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, inv := Submission(validRaw(), test.file)
			assertViolation(t, inv, test.wantErr)
		})
	}
}

func TestSubmission_CollectsAllViolations(t *testing.T) {
	raw := RawFields{Name: "Al", Email: "nope", Phone: "123", Terms: ""}
	_, inv := Submission(raw, nil)
	if inv == nil {
		t.Fatal("expected violations")
	}
	if len(inv.Messages) != 5 {
		t.Fatalf("expected 5 violations, got %d: %v", len(inv.Messages), inv.Messages)
	}
}

func TestSubmission_EchoesSanitizedFields(t *testing.T) {
	raw := RawFields{
		Name:  "<script>alert(1)</script>Al",
		Email: "BAD",
		Phone: "123",
		Terms: "on",
	}
	_, inv := Submission(raw, validFile())
	if inv == nil {
		t.Fatal("expected violations")
	}
	if strings.Contains(inv.Echo.Name, "<script>") {
		t.Errorf("echoed name not sanitized: %q", inv.Echo.Name)
	}
	if inv.Echo.Email != "bad" {
		t.Errorf("expected lowercased echo email, got %q", inv.Echo.Email)
	}
}

func assertViolation(t *testing.T, inv *Invalid, want string) {
	t.Helper()
	if want == "" {
		if inv != nil {
			t.Fatalf("expected no violations, got %v", inv.Messages)
		}
		return
	}
	if inv == nil {
		t.Fatalf("expected violation containing %q, got none", want)
	}
	for _, msg := range inv.Messages {
		if strings.Contains(msg, want) {
			return
		}
	}
	t.Fatalf("expected violation containing %q, got %v", want, inv.Messages)
}
