package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/faceforge/faceforge/internal/handler/dto"
	"github.com/faceforge/faceforge/internal/service"
	"github.com/faceforge/faceforge/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageHandler serves the server-rendered HTML pages.
type PageHandler struct {
	svc     *service.SubmissionService
	baseURL string
	logger  *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc *service.SubmissionService, baseURL string, logger *slog.Logger) *PageHandler {
	return &PageHandler{svc: svc, baseURL: baseURL, logger: logger}
}

// Form serves the submission form.
// GET /
func (h *PageHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, "form.html", nil)
}

// listPageData feeds the submissions list template.
type listPageData struct {
	Submissions []dto.SubmissionResponse
	Pagination  dto.Pagination
	PrevPage    int
	NextPage    int
}

// Submissions serves the browsable list page.
// GET /submissions
func (h *PageHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	params := validate.ListQuery(r.URL.Query())

	out, err := h.svc.List(r.Context(), params)
	if err != nil {
		h.logger.Error("list page failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := listPageData{
		Submissions: make([]dto.SubmissionResponse, 0, len(out.Submissions)),
		Pagination: dto.Pagination{
			Page:       out.Page,
			Limit:      out.Limit,
			Total:      out.Total,
			TotalPages: out.TotalPages,
			HasNext:    out.HasNext,
			HasPrev:    out.HasPrev,
		},
		PrevPage: out.Page - 1,
		NextPage: out.Page + 1,
	}
	for _, sub := range out.Submissions {
		data.Submissions = append(data.Submissions, dto.ToSubmissionResponse(sub, h.baseURL))
	}

	h.render(w, "list.html", data)
}

// render executes the template into a buffer first so a failure can still
// produce a clean 500 instead of a half-written page.
func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template render failed",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
