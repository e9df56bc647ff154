package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/faceforge/faceforge/internal/faceswap"
	"github.com/faceforge/faceforge/internal/metrics"
	"github.com/faceforge/faceforge/internal/repository"
	"github.com/faceforge/faceforge/internal/storage"
	"github.com/faceforge/faceforge/internal/testutil"
	"github.com/faceforge/faceforge/internal/upload"
	"github.com/faceforge/faceforge/internal/validate"
)

func newTestService(t *testing.T) (*SubmissionService, *repository.MemoryStore, *storage.Store, *metrics.InMemoryRecorder) {
	t.Helper()

	files, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	store := repository.NewMemoryStore()
	recorder := metrics.NewInMemory()
	transformer := faceswap.NewSimulator(files, time.Millisecond)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	svc := NewSubmissionService(store, transformer, files, "http://localhost:3000/", logger, recorder)
	return svc, store, files, recorder
}

func writeUpload(t *testing.T, files *storage.Store, content []byte) *upload.Upload {
	t.Helper()

	path, size, err := files.WriteOriginal(files.NewOriginalName(".jpg"), strings.NewReader(string(content)))
	if err != nil {
		t.Fatalf("WriteOriginal: %v", err)
	}
	return &upload.Upload{
		Path:         path,
		Filename:     "test.jpg",
		OriginalName: "test.jpg",
		MIMEType:     "image/jpeg",
		Size:         size,
	}
}

func testFields() validate.Fields {
	return validate.Fields{
		Name:          "John Doe",
		Email:         "john@example.com",
		Phone:         "5551234567",
		TermsAccepted: true,
	}
}

func TestCreate_Success(t *testing.T) {
	svc, store, files, recorder := newTestService(t)
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	out, err := svc.Create(context.Background(), CreateInput{Fields: testFields(), Upload: up})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sub := out.Submission
	if sub.ID == "" {
		t.Error("expected assigned id")
	}
	if !sub.IsCompleted() {
		t.Errorf("expected completed status, got %q", sub.Status)
	}
	if sub.SwappedImage == nil {
		t.Fatal("expected swapped image path")
	}
	if !files.Exists(*sub.SwappedImage) {
		t.Error("swapped file must exist on disk")
	}
	if out.ProcessingTime < 0 {
		t.Errorf("negative processing time %d", out.ProcessingTime)
	}
	if !strings.HasPrefix(out.SwappedImageURL, "http://localhost:3000/files/swapped/") {
		t.Errorf("unexpected swapped url %q", out.SwappedImageURL)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 record, got %d", count)
	}

	if got := recorder.Snapshot().SubmissionsCreated; got != 1 {
		t.Errorf("expected 1 created metric, got %d", got)
	}
}

func TestCreate_RejectsNonImage(t *testing.T) {
	svc, store, files, _ := newTestService(t)
	up := writeUpload(t, files, []byte("definitely not an image payload"))

	_, err := svc.Create(context.Background(), CreateInput{Fields: testFields(), Upload: up})
	if !errors.Is(err, faceswap.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}

	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("no record may be created on rejection, got %d", count)
	}
}

func TestCreate_TransformFailureCreatesNoRecord(t *testing.T) {
	svc, store, files, recorder := newTestService(t)
	svc.transformer = failingTransformer{}
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	_, err := svc.Create(context.Background(), CreateInput{Fields: testFields(), Upload: up})
	if !errors.Is(err, faceswap.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}

	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("no record may be created on transform failure, got %d", count)
	}
	if got := recorder.Snapshot().SubmissionsFailed; got != 1 {
		t.Errorf("expected 1 failed metric, got %d", got)
	}
	if !files.Exists(up.Path) {
		t.Error("original file must be left in place on failure")
	}
}

type failingTransformer struct{}

func (failingTransformer) Transform(_ context.Context, _ string) (*faceswap.Result, error) {
	return nil, faceswap.ErrService
}

func TestGet(t *testing.T) {
	svc, _, files, _ := newTestService(t)
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	out, err := svc.Create(context.Background(), CreateInput{Fields: testFields(), Upload: up})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), out.Submission.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "john@example.com" {
		t.Errorf("unexpected email %q", got.Email)
	}

	if _, err := svc.Get(context.Background(), "000000000000000000000000"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "not-an-id"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestList_Pagination(t *testing.T) {
	svc, _, files, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		up := writeUpload(t, files, testutil.JPEGBytes(512))
		if _, err := svc.Create(ctx, CreateInput{Fields: testFields(), Upload: up}); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}

	page, err := svc.List(ctx, validate.ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Submissions) != 10 {
		t.Errorf("expected 10 on page 1, got %d", len(page.Submissions))
	}
	if page.Total != 12 || page.TotalPages != 2 {
		t.Errorf("total=%d totalPages=%d", page.Total, page.TotalPages)
	}
	if !page.HasNext || page.HasPrev {
		t.Errorf("page 1 flags: hasNext=%v hasPrev=%v", page.HasNext, page.HasPrev)
	}

	page, err = svc.List(ctx, validate.ListParams{Page: 2, Limit: 10, SortBy: "createdAt", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page.Submissions) != 2 {
		t.Errorf("expected 2 on page 2, got %d", len(page.Submissions))
	}
	if page.HasNext || !page.HasPrev {
		t.Errorf("page 2 flags: hasNext=%v hasPrev=%v", page.HasNext, page.HasPrev)
	}
}

func TestDownload(t *testing.T) {
	svc, _, files, _ := newTestService(t)
	ctx := context.Background()
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	out, err := svc.Create(ctx, CreateInput{Fields: testFields(), Upload: up})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := svc.Download(ctx, out.Submission.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := "john-doe-" + out.Submission.ID + ".jpg"
	if info.Filename != want {
		t.Errorf("filename = %q, want %q", info.Filename, want)
	}
	if !files.Exists(info.Path) {
		t.Error("download path must point at an existing file")
	}
}

func TestDownload_MissingFile(t *testing.T) {
	svc, _, files, _ := newTestService(t)
	ctx := context.Background()
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	out, err := svc.Create(ctx, CreateInput{Fields: testFields(), Upload: up})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := files.Remove(*out.Submission.SwappedImage); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := svc.Download(ctx, out.Submission.ID); !errors.Is(err, ErrFileMissing) {
		t.Errorf("expected ErrFileMissing, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, store, files, recorder := newTestService(t)
	ctx := context.Background()
	up := writeUpload(t, files, testutil.JPEGBytes(512))

	out, err := svc.Create(ctx, CreateInput{Fields: testFields(), Upload: up})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	swapped := *out.Submission.SwappedImage

	if err := svc.Delete(ctx, out.Submission.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if files.Exists(up.Path) || files.Exists(swapped) {
		t.Error("stored files must be removed on delete")
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("expected 0 records after delete, got %d", count)
	}
	if got := recorder.Snapshot().SubmissionsDeleted; got != 1 {
		t.Errorf("expected 1 deleted metric, got %d", got)
	}

	if err := svc.Delete(ctx, out.Submission.ID); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("second delete: expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "John Doe", "john-doe-abc123.png"},
		{"punctuation", "O'Brien, Jr.", "o-brien-jr-abc123.png"},
		{"all_symbols", "!!!", "submission-abc123.png"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := downloadName(test.in, "abc123", ".png"); got != test.want {
				t.Errorf("downloadName(%q) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}
