package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faceforge/faceforge/internal/model"
)

// sortColumns maps API sort field names to table columns. Anything not in
// this map falls back to created_at, so user input can never reach the SQL.
var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Repository is the Postgres-backed SubmissionStore.
type Repository struct {
	pool *pgxpool.Pool
}

var _ SubmissionStore = (*Repository)(nil)

// New creates a Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

const submissionColumns = `id, name, email, phone, terms_accepted, original_image, swapped_image, status, processing_time, created_at, updated_at`

// Create inserts a new submission, assigning its identifier and timestamps.
func (r *Repository) Create(ctx context.Context, sub *model.Submission) (*model.Submission, error) {
	now := time.Now().UTC()
	record := *sub
	record.ID = model.NewID()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Name,
		record.Email,
		record.Phone,
		record.TermsAccepted,
		record.OriginalImage,
		record.SwappedImage,
		record.Status,
		record.ProcessingTime,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return &record, nil
}

// FindAll returns one page of submissions per the given ordering.
func (r *Repository) FindAll(ctx context.Context, opts ListOptions) ([]*model.Submission, error) {
	query := fmt.Sprintf(`
		SELECT `+submissionColumns+`
		FROM submissions
		ORDER BY %s %s
		LIMIT $1 OFFSET $2
	`, orderColumn(opts.SortBy), orderDirection(opts.SortOrder))

	rows, err := r.pool.Query(ctx, query, opts.Limit, opts.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

// FindByID returns a submission by id, rejecting malformed ids before
// querying.
func (r *Repository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// UpdateByID merges the partial update and refreshes updated_at.
func (r *Repository) UpdateByID(ctx context.Context, id string, update SubmissionUpdate) (*model.Submission, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}

	set := []string{"updated_at = $2"}
	args := []any{id, time.Now().UTC()}
	idx := 3

	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.SwappedImage != nil {
		add("swapped_image", *update.SwappedImage)
	}
	if update.ProcessingTime != nil {
		add("processing_time", *update.ProcessingTime)
	}

	query := fmt.Sprintf(`
		UPDATE submissions
		SET %s
		WHERE id = $1
		RETURNING `+submissionColumns+`
	`, strings.Join(set, ", "))

	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return sub, nil
}

// DeleteByID removes a submission, reporting whether one was removed.
func (r *Repository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if !model.IsValidID(id) {
		return false, ErrInvalidID
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete submission: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Count returns the total number of submissions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// FindByEmail returns all submissions for a normalized email, newest first.
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]*model.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find submissions by email: %w", err)
	}
	defer rows.Close()

	return scanSubmissions(rows)
}

// Stats aggregates counts by calendar window and status plus the average
// processing time, in a single scan.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('week', now())),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COALESCE(AVG(processing_time), 0)
		FROM submissions
	`

	stats := &Stats{ByStatus: make(map[string]int64)}
	var pending, completed, failed int64

	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Today,
		&stats.ThisWeek,
		&stats.ThisMonth,
		&pending,
		&completed,
		&failed,
		&stats.AvgProcessingTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats.ByStatus[string(model.StatusPending)] = pending
	stats.ByStatus[string(model.StatusCompleted)] = completed
	stats.ByStatus[string(model.StatusFailed)] = failed
	return stats, nil
}

func orderColumn(sortBy string) string {
	if col, ok := sortColumns[sortBy]; ok {
		return col
	}
	return "created_at"
}

func orderDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var sub model.Submission
	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Email,
		&sub.Phone,
		&sub.TermsAccepted,
		&sub.OriginalImage,
		&sub.SwappedImage,
		&sub.Status,
		&sub.ProcessingTime,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func scanSubmissions(rows pgx.Rows) ([]*model.Submission, error) {
	var subs []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subs, nil
}
