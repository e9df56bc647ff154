// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"path/filepath"
	"time"

	"github.com/faceforge/faceforge/internal/model"
)

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for all error responses outside the form
// submission path.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// FormData echoes the sanitized field values back to the form.
type FormData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SubmitErrorResponse is returned when a form submission is rejected.
// Errors holds every violation in field order.
type SubmitErrorResponse struct {
	Success  bool     `json:"success"`
	Errors   []string `json:"errors"`
	FormData FormData `json:"formData"`
}

// SubmitSuccessResponse is returned when a submission completes.
type SubmitSuccessResponse struct {
	Success        bool   `json:"success"`
	SubmissionID   string `json:"submissionId"`
	SwappedImage   string `json:"swappedImage"`
	ProcessingTime int64  `json:"processingTime"`
}

// SubmissionResponse represents a submission in API responses.
type SubmissionResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Status         string    `json:"status"`
	SwappedImage   string    `json:"swappedImage,omitempty"`
	ProcessingTime int64     `json:"processingTime"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToSubmissionResponse converts a submission to its API representation.
// The swapped image is exposed as a public URL, never as a storage path.
func ToSubmissionResponse(s *model.Submission, baseURL string) SubmissionResponse {
	resp := SubmissionResponse{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Phone:          s.Phone,
		Status:         string(s.Status),
		ProcessingTime: s.ProcessingTime,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.SwappedImage != nil {
		resp.SwappedImage = baseURL + "/files/swapped/" + filepath.Base(*s.SwappedImage)
	}
	return resp
}

// Pagination describes the page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// SubmissionListResponse represents a paginated list of submissions.
type SubmissionListResponse struct {
	Data       []SubmissionResponse `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
