package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/faceforge/faceforge/internal/model"
)

// MemoryStore is the in-memory SubmissionStore used in tests and local
// experiments. It mirrors the Postgres store's semantics exactly, including
// id validation and timestamp stamping.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.Submission

	// now is swappable so tests can control calendar-window stats.
	now func() time.Time
}

var _ SubmissionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.Submission),
		now:     time.Now,
	}
}

// Create assigns an identifier, stamps timestamps and stores a copy.
func (m *MemoryStore) Create(_ context.Context, sub *model.Submission) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	record := *sub
	record.ID = model.NewID()
	record.CreatedAt = now
	record.UpdatedAt = now

	m.records[record.ID] = &record

	out := record
	return &out, nil
}

// FindAll returns one page of records per the given ordering.
func (m *MemoryStore) FindAll(_ context.Context, opts ListOptions) ([]*model.Submission, error) {
	m.mu.RLock()
	subs := make([]*model.Submission, 0, len(m.records))
	for _, sub := range m.records {
		copied := *sub
		subs = append(subs, &copied)
	}
	m.mu.RUnlock()

	sortSubmissions(subs, opts.SortBy, opts.SortOrder)

	if opts.Skip >= len(subs) {
		return nil, nil
	}
	subs = subs[opts.Skip:]
	if opts.Limit > 0 && len(subs) > opts.Limit {
		subs = subs[:opts.Limit]
	}
	return subs, nil
}

// FindByID returns the record or ErrSubmissionNotFound.
func (m *MemoryStore) FindByID(_ context.Context, id string) (*model.Submission, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.records[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	copied := *sub
	return &copied, nil
}

// UpdateByID merges the partial update and refreshes updatedAt.
func (m *MemoryStore) UpdateByID(_ context.Context, id string, update SubmissionUpdate) (*model.Submission, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.records[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}

	if update.Name != nil {
		sub.Name = *update.Name
	}
	if update.Email != nil {
		sub.Email = *update.Email
	}
	if update.Phone != nil {
		sub.Phone = *update.Phone
	}
	if update.Status != nil {
		sub.Status = *update.Status
	}
	if update.SwappedImage != nil {
		sub.SwappedImage = update.SwappedImage
	}
	if update.ProcessingTime != nil {
		sub.ProcessingTime = *update.ProcessingTime
	}
	sub.UpdatedAt = m.now().UTC()

	copied := *sub
	return &copied, nil
}

// DeleteByID removes the record, reporting whether one was removed.
func (m *MemoryStore) DeleteByID(_ context.Context, id string) (bool, error) {
	if !model.IsValidID(id) {
		return false, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

// Count returns the total record count.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// FindByEmail returns all records for a normalized email, newest first.
func (m *MemoryStore) FindByEmail(_ context.Context, email string) ([]*model.Submission, error) {
	m.mu.RLock()
	var subs []*model.Submission
	for _, sub := range m.records {
		if sub.Email == email {
			copied := *sub
			subs = append(subs, &copied)
		}
	}
	m.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

// Stats aggregates counts by calendar window and status.
func (m *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := startOfWeek(dayStart)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &Stats{
		ByStatus: map[string]int64{
			string(model.StatusPending):   0,
			string(model.StatusCompleted): 0,
			string(model.StatusFailed):    0,
		},
	}

	var totalProcessing int64
	for _, sub := range m.records {
		stats.Total++
		if !sub.CreatedAt.Before(dayStart) {
			stats.Today++
		}
		if !sub.CreatedAt.Before(weekStart) {
			stats.ThisWeek++
		}
		if !sub.CreatedAt.Before(monthStart) {
			stats.ThisMonth++
		}
		stats.ByStatus[string(sub.Status)]++
		totalProcessing += sub.ProcessingTime
	}

	if stats.Total > 0 {
		stats.AvgProcessingTime = float64(totalProcessing) / float64(stats.Total)
	}
	return stats, nil
}

// startOfWeek returns the preceding Monday, matching Postgres date_trunc.
func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func sortSubmissions(subs []*model.Submission, sortBy, order string) {
	asc := order == "asc"

	less := func(i, j int) bool {
		var cmp int
		switch sortBy {
		case "name":
			cmp = strings.Compare(subs[i].Name, subs[j].Name)
		case "email":
			cmp = strings.Compare(subs[i].Email, subs[j].Email)
		case "updatedAt":
			cmp = compareTimes(subs[i].UpdatedAt, subs[j].UpdatedAt)
		default: // createdAt
			cmp = compareTimes(subs[i].CreatedAt, subs[j].CreatedAt)
		}
		if cmp == 0 {
			// Stable tiebreak so pagination never repeats records.
			cmp = strings.Compare(subs[i].ID, subs[j].ID)
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	}

	sort.Slice(subs, less)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
