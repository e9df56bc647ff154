package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faceforge/faceforge/internal/faceswap"
	"github.com/faceforge/faceforge/internal/handler/dto"
	"github.com/faceforge/faceforge/internal/service"
	"github.com/faceforge/faceforge/internal/storage"
	"github.com/faceforge/faceforge/internal/upload"
	"github.com/faceforge/faceforge/internal/validate"
)

// SubmissionHandler handles HTTP requests for submissions.
type SubmissionHandler struct {
	svc     *service.SubmissionService
	uploads *upload.Handler
	files   *storage.Store
	baseURL string
	logger  *slog.Logger
	maxBody int64
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(
	svc *service.SubmissionService,
	uploads *upload.Handler,
	files *storage.Store,
	baseURL string,
	logger *slog.Logger,
	maxBody int64,
) *SubmissionHandler {
	return &SubmissionHandler{
		svc:     svc,
		uploads: uploads,
		files:   files,
		baseURL: baseURL,
		logger:  logger,
		maxBody: maxBody,
	}
}

// Create handles POST /api/submit.
// A rejected submission leaves no record and no stored file behind.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	up, upErr := h.uploads.Process(r)
	if upErr != nil && errors.Is(upErr, upload.ErrMalformedForm) {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form submission")
		return
	}

	raw := validate.RawFields{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
		Terms: r.FormValue("terms"),
	}

	var fileInfo *validate.FileInfo
	if upErr == nil {
		fileInfo = &validate.FileInfo{MIMEType: up.MIMEType, Size: up.Size}
	}

	fields, inv := validate.Submission(raw, fileInfo)
	if inv != nil {
		if upErr == nil {
			h.removeStored(up.Path)
		}

		messages := inv.Messages
		if upErr != nil && !errors.Is(upErr, upload.ErrNoFile) {
			messages = replaceFileMessage(messages, uploadMessage(upErr))
		}

		writeJSON(w, http.StatusBadRequest, dto.SubmitErrorResponse{
			Success: false,
			Errors:  messages,
			FormData: dto.FormData{
				Name:  inv.Echo.Name,
				Email: inv.Echo.Email,
				Phone: inv.Echo.Phone,
			},
		})
		return
	}

	out, err := h.svc.Create(r.Context(), service.CreateInput{Fields: fields, Upload: up})
	if err != nil {
		h.handleCreateError(w, up, err)
		return
	}

	h.logger.Info("submission created",
		slog.String("submission_id", out.Submission.ID),
		slog.Int64("processing_time_ms", out.ProcessingTime),
	)

	writeJSON(w, http.StatusOK, dto.SubmitSuccessResponse{
		Success:        true,
		SubmissionID:   out.Submission.ID,
		SwappedImage:   out.SwappedImageURL,
		ProcessingTime: out.ProcessingTime,
	})
}

// List handles GET /api/submissions.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	params := validate.ListQuery(r.URL.Query())

	out, err := h.svc.List(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	data := make([]dto.SubmissionResponse, 0, len(out.Submissions))
	for _, sub := range out.Submissions {
		data = append(data, dto.ToSubmissionResponse(sub, h.baseURL))
	}

	writeJSON(w, http.StatusOK, dto.SubmissionListResponse{
		Data: data,
		Pagination: dto.Pagination{
			Page:       out.Page,
			Limit:      out.Limit,
			Total:      out.Total,
			TotalPages: out.TotalPages,
			HasNext:    out.HasNext,
			HasPrev:    out.HasPrev,
		},
	})
}

// Get handles GET /api/submissions/{id}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionResponse(sub, h.baseURL))
}

// Download handles GET /api/submissions/{id}/download.
func (h *SubmissionHandler) Download(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Filename+`"`)
	http.ServeFile(w, r, info.Path)
}

// Delete handles DELETE /api/submissions/{id}.
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteResponse{
		Success: true,
		Message: "Submission deleted",
	})
}

// Stats handles GET /api/stats.
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleCreateError maps pipeline errors to HTTP responses. Client-class
// failures also remove the stored original so a rejection leaves no state.
func (h *SubmissionHandler) handleCreateError(w http.ResponseWriter, up *upload.Upload, err error) {
	switch {
	case errors.Is(err, faceswap.ErrNotImage):
		h.removeStored(up.Path)
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Uploaded file is not a valid image")
	case errors.Is(err, faceswap.ErrImageTooLarge):
		h.removeStored(up.Path)
		writeError(w, http.StatusBadRequest, "IMAGE_TOO_LARGE", "Image must be 2MB or smaller")
	case errors.Is(err, faceswap.ErrNotConfigured):
		h.logger.Error("face swap provider not configured")
		writeError(w, http.StatusInternalServerError, "SWAP_UNAVAILABLE", "Face swap service is not configured")
	case errors.Is(err, faceswap.ErrConnectivity):
		h.logger.Error("face swap provider unreachable", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "SWAP_UNREACHABLE", "Could not reach the face swap service")
	case errors.Is(err, faceswap.ErrService):
		h.logger.Error("face swap processing failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "SWAP_FAILED", "Face swap processing failed")
	default:
		h.logger.Error("internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// handleServiceError maps read-side service errors to HTTP responses.
func (h *SubmissionHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid submission ID")
	case errors.Is(err, service.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Submission not found")
	case errors.Is(err, service.ErrNotCompleted), errors.Is(err, service.ErrFileMissing):
		writeError(w, http.StatusNotFound, "IMAGE_UNAVAILABLE", "Transformed image is not available")
	default:
		h.logger.Error("internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// removeStored deletes a stored file, logging failures only.
func (h *SubmissionHandler) removeStored(path string) {
	if err := h.files.Remove(path); err != nil {
		h.logger.Warn("failed to remove stored file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// uploadMessage converts an upload error into a user-facing message.
func uploadMessage(err error) string {
	switch {
	case errors.Is(err, upload.ErrTooManyFiles):
		return "Only one image may be uploaded"
	case errors.Is(err, upload.ErrUnexpectedField):
		return "Image must be uploaded in the image field"
	case errors.Is(err, upload.ErrUnsupportedType):
		return "Only JPEG and PNG images are allowed"
	case errors.Is(err, upload.ErrFileTooLarge):
		return "Image must be 2MB or smaller"
	case errors.Is(err, upload.ErrTooManyFields), errors.Is(err, upload.ErrFieldTooLarge):
		return "Form contains too many or oversized fields"
	}
	return "An image file is required"
}

// replaceFileMessage swaps the generic missing-file message for the more
// specific upload error, keeping message order stable.
func replaceFileMessage(messages []string, specific string) []string {
	out := make([]string, len(messages))
	replaced := false
	for i, m := range messages {
		if m == "An image file is required" {
			out[i] = specific
			replaced = true
			continue
		}
		out[i] = m
	}
	if !replaced {
		out = append(out, specific)
	}
	return out
}
