// Package model defines domain entities for the application.
package model

import "time"

// SubmissionStatus represents the processing state of a submission.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusCompleted SubmissionStatus = "completed"
	StatusFailed    SubmissionStatus = "failed"
)

// IsValid checks if the status is one of the known values.
func (s SubmissionStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Submission represents a single form submission with its stored images
// and processing metadata. SwappedImage stays nil until the transformation
// reports success.
type Submission struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	TermsAccepted  bool             `json:"terms_accepted"`
	OriginalImage  string           `json:"original_image"`
	SwappedImage   *string          `json:"swapped_image,omitempty"`
	Status         SubmissionStatus `json:"status"`
	ProcessingTime int64            `json:"processing_time_ms"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsCompleted returns true if the swap finished successfully.
func (s *Submission) IsCompleted() bool {
	return s.Status == StatusCompleted
}
