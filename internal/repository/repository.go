// Package repository provides persistence for submission records.
// SubmissionStore has two interchangeable implementations: the durable
// Postgres store and an in-memory store used in tests.
package repository

import (
	"context"
	"errors"

	"github.com/faceforge/faceforge/internal/model"
)

// Common errors for submission store operations.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidID          = errors.New("invalid submission id")
)

// ListOptions controls pagination and ordering for FindAll.
// SortBy uses the API field names (name, email, createdAt, updatedAt).
type ListOptions struct {
	Limit     int
	Skip      int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// SubmissionUpdate carries the fields of a partial update. Nil fields are
// left untouched; updatedAt is always refreshed.
type SubmissionUpdate struct {
	Name           *string
	Email          *string
	Phone          *string
	Status         *model.SubmissionStatus
	SwappedImage   *string
	ProcessingTime *int64
}

// Stats aggregates submission counts by calendar window and status.
type Stats struct {
	Total             int64            `json:"total"`
	Today             int64            `json:"today"`
	ThisWeek          int64            `json:"this_week"`
	ThisMonth         int64            `json:"this_month"`
	ByStatus          map[string]int64 `json:"by_status"`
	AvgProcessingTime float64          `json:"avg_processing_time_ms"`
}

// SubmissionStore is the persistence contract for submission records.
// Every operation is independently atomic at single-record granularity.
type SubmissionStore interface {
	// Create assigns an identifier, stamps both timestamps and persists
	// the record, returning it in full.
	Create(ctx context.Context, sub *model.Submission) (*model.Submission, error)

	// FindAll returns one page of records per the given ordering.
	FindAll(ctx context.Context, opts ListOptions) ([]*model.Submission, error)

	// FindByID returns the record or ErrSubmissionNotFound. Malformed ids
	// yield ErrInvalidID without touching the backing store.
	FindByID(ctx context.Context, id string) (*model.Submission, error)

	// UpdateByID merges the partial update, refreshes updatedAt and
	// returns the post-update record.
	UpdateByID(ctx context.Context, id string, update SubmissionUpdate) (*model.Submission, error)

	// DeleteByID removes the record, reporting whether one was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// Count returns the total record count.
	Count(ctx context.Context) (int64, error)

	// FindByEmail returns all records for a normalized email, newest first.
	FindByEmail(ctx context.Context, email string) ([]*model.Submission, error)

	// Stats returns aggregate counts and the average processing time.
	Stats(ctx context.Context) (*Stats, error)
}
