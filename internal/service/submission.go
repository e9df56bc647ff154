// Package service orchestrates the submission pipeline: image pre-check,
// transformation, persistence, and the read-side operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/faceforge/faceforge/internal/faceswap"
	"github.com/faceforge/faceforge/internal/metrics"
	"github.com/faceforge/faceforge/internal/model"
	"github.com/faceforge/faceforge/internal/repository"
	"github.com/faceforge/faceforge/internal/storage"
	"github.com/faceforge/faceforge/internal/upload"
	"github.com/faceforge/faceforge/internal/validate"
)

// Service errors.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidID          = errors.New("invalid submission id")
	ErrFileMissing        = errors.New("stored file no longer exists")
	ErrNotCompleted       = errors.New("submission has no transformed image")
)

// SubmissionService coordinates the pipeline's collaborators. The
// transformer is injected so the simulated and real providers are
// interchangeable.
type SubmissionService struct {
	store       repository.SubmissionStore
	transformer faceswap.Transformer
	files       *storage.Store
	baseURL     string
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(
	store repository.SubmissionStore,
	transformer faceswap.Transformer,
	files *storage.Store,
	baseURL string,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *SubmissionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SubmissionService{
		store:       store,
		transformer: transformer,
		files:       files,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
		metrics:     recorder,
	}
}

// CreateInput carries the validated fields and the accepted upload.
type CreateInput struct {
	Fields validate.Fields
	Upload *upload.Upload
}

// CreateOutput is the result of a successful submission.
type CreateOutput struct {
	Submission      *model.Submission
	SwappedImageURL string
	ProcessingTime  int64
}

// Create runs the write path: re-check the stored image, transform it,
// then persist the record with status completed. No record is created on
// any failure; a transform failure leaves the original file in place for
// inspection but nothing is persisted.
func (s *SubmissionService) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	format, err := faceswap.ValidateImage(input.Upload.Path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("image validated",
		slog.String("format", format),
		slog.String("file", input.Upload.Filename),
	)

	result, err := s.transformer.Transform(ctx, input.Upload.Path)
	if err != nil {
		s.metrics.IncSubmissionFailed()
		return nil, fmt.Errorf("transform image: %w", err)
	}

	sub := &model.Submission{
		Name:           input.Fields.Name,
		Email:          input.Fields.Email,
		Phone:          input.Fields.Phone,
		TermsAccepted:  input.Fields.TermsAccepted,
		OriginalImage:  input.Upload.Path,
		SwappedImage:   &result.SwappedPath,
		Status:         model.StatusCompleted,
		ProcessingTime: result.ProcessingTime,
	}

	created, err := s.store.Create(ctx, sub)
	if err != nil {
		s.metrics.IncSubmissionFailed()
		s.logger.Error("submission persist failed after transform",
			slog.String("swapped_file", result.SwappedFilename),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	s.metrics.IncSubmissionCreated()
	s.metrics.ObserveSwapDuration(time.Duration(result.ProcessingTime) * time.Millisecond)

	return &CreateOutput{
		Submission:      created,
		SwappedImageURL: s.swappedURL(result.SwappedFilename),
		ProcessingTime:  result.ProcessingTime,
	}, nil
}

// ListOutput is one page of submissions plus pagination flags.
type ListOutput struct {
	Submissions []*model.Submission
	Page        int
	Limit       int
	Total       int64
	TotalPages  int
	HasNext     bool
	HasPrev     bool
}

// List returns a page of submissions per the clamped query parameters.
func (s *SubmissionService) List(ctx context.Context, params validate.ListParams) (*ListOutput, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	subs, err := s.store.FindAll(ctx, repository.ListOptions{
		Limit:     params.Limit,
		Skip:      params.Skip(),
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return &ListOutput{
		Submissions: subs,
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrev:     params.Page > 1,
	}, nil
}

// Get returns a submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return sub, nil
}

// DownloadInfo describes the file to stream for a download request.
type DownloadInfo struct {
	Path     string
	Filename string
}

// Download verifies the transformed file still exists on disk and returns
// the path plus a download filename derived from the submitter and the id.
func (s *SubmissionService) Download(ctx context.Context, id string) (*DownloadInfo, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if sub.SwappedImage == nil || !sub.IsCompleted() {
		return nil, ErrNotCompleted
	}

	if !s.files.Exists(*sub.SwappedImage) {
		return nil, ErrFileMissing
	}

	return &DownloadInfo{
		Path:     *sub.SwappedImage,
		Filename: downloadName(sub.Name, sub.ID, filepath.Ext(*sub.SwappedImage)),
	}, nil
}

// Delete removes the record after best-effort cleanup of both stored
// files. Cleanup failures never block record removal.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}

	paths := []string{sub.OriginalImage}
	if sub.SwappedImage != nil {
		paths = append(paths, *sub.SwappedImage)
	}
	faceswap.Cleanup(s.logger, paths)

	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if !removed {
		return ErrSubmissionNotFound
	}

	s.metrics.IncSubmissionDeleted()
	s.logger.Info("submission deleted", slog.String("submission_id", id))
	return nil
}

// Stats returns aggregate submission counts.
func (s *SubmissionService) Stats(ctx context.Context) (*repository.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}
	return stats, nil
}

// ByEmail returns all submissions for a normalized email, newest first.
func (s *SubmissionService) ByEmail(ctx context.Context, email string) ([]*model.Submission, error) {
	subs, err := s.store.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("find submissions by email: %w", err)
	}
	return subs, nil
}

// swappedURL builds the public URL for a transformed image.
func (s *SubmissionService) swappedURL(filename string) string {
	return s.baseURL + "/files/swapped/" + filename
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// downloadName builds the Content-Disposition filename from the
// submitter's name and the record id.
func downloadName(name, id, ext string) string {
	base := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "submission"
	}
	return base + "-" + id + ext
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSubmissionNotFound):
		return ErrSubmissionNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	}
	return err
}
