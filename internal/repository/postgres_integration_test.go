package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faceforge/faceforge/internal/model"
	"github.com/faceforge/faceforge/internal/testutil"
)

// newIntegrationRepo connects to the database named by TEST_DATABASE_URL
// and starts from an empty submissions table. Skipped when the variable
// is unset.
func newIntegrationRepo(t *testing.T) *Repository {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	if _, err := repo.pool.Exec(ctx, "TRUNCATE submissions"); err != nil {
		t.Fatalf("truncate submissions: %v", err)
	}
	return repo
}

func TestRepository_CRUDRoundTrip(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleSubmission(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !model.IsValidID(created.ID) {
		t.Fatalf("expected valid id, got %q", created.ID)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Email != created.Email || found.Status != model.StatusCompleted {
		t.Errorf("round-trip mismatch: %+v", found)
	}

	status := model.StatusFailed
	updated, err := repo.UpdateByID(ctx, created.ID, SubmissionUpdate{Status: &status})
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if updated.Status != model.StatusFailed {
		t.Errorf("expected merged status, got %s", updated.Status)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected updatedAt refreshed")
	}

	removed, err := repo.DeleteByID(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteByID: removed=%v err=%v", removed, err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound after delete, got %v", err)
	}
}

func TestRepository_FindByID_RejectsMalformedWithoutQuery(t *testing.T) {
	repo := newIntegrationRepo(t)

	if _, err := repo.FindByID(context.Background(), "zzz"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRepository_PaginationAndCount(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := repo.Create(ctx, sampleSubmission(i)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 25 {
		t.Fatalf("Count: got %d err=%v", count, err)
	}

	page, err := repo.FindAll(ctx, ListOptions{Limit: 10, Skip: 10, SortBy: "email", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("expected 10 records, got %d", len(page))
	}
	if page[0].Email != "user010@example.com" {
		t.Errorf("expected page 2 to start at user010, got %s", page[0].Email)
	}
}

func TestRepository_Stats(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, sampleSubmission(i)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Today != 3 {
		t.Errorf("expected 3 records created today, got %+v", stats)
	}
	if stats.ByStatus[string(model.StatusCompleted)] != 3 {
		t.Errorf("expected 3 completed, got %+v", stats.ByStatus)
	}
	if stats.AvgProcessingTime <= 0 {
		t.Errorf("expected positive average processing time, got %f", stats.AvgProcessingTime)
	}
}
