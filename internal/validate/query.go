package validate

import (
	"net/url"
	"strconv"
)

// List query defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// sortableFields is the allow-list for the sort query parameter.
var sortableFields = map[string]bool{
	"name":      true,
	"email":     true,
	"createdAt": true,
	"updatedAt": true,
}

// ListParams holds clamped pagination and ordering parameters.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Skip returns the record offset for the current page.
func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// ListQuery clamps list query parameters to safe values. Invalid values
// silently fall back to defaults rather than erroring.
func ListQuery(q url.Values) ListParams {
	params := ListParams{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}

	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			params.Page = page
		}
	}

	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 && limit <= MaxLimit {
			params.Limit = limit
		}
	}

	if raw := q.Get("sort"); raw != "" && sortableFields[raw] {
		params.SortBy = raw
	}

	if raw := q.Get("order"); raw == "asc" || raw == "desc" {
		params.SortOrder = raw
	}

	return params
}
