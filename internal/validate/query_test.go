package validate

import (
	"net/url"
	"testing"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ListParams
	}{
		{
			name:  "defaults",
			query: "",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "explicit",
			query: "page=3&limit=25&sort=email&order=asc",
			want:  ListParams{Page: 3, Limit: 25, SortBy: "email", SortOrder: "asc"},
		},
		{
			name:  "page_zero_falls_back",
			query: "page=0",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "negative_page_falls_back",
			query: "page=-5",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "limit_above_max_falls_back",
			query: "limit=500",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "limit_at_max",
			query: "limit=50",
			want:  ListParams{Page: 1, Limit: 50, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "non_numeric_falls_back",
			query: "page=abc&limit=xyz",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
		{
			name:  "sort_not_in_allowlist",
			query: "sort=password&order=sideways",
			want:  ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q, err := url.ParseQuery(test.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got := ListQuery(q)
			if got != test.want {
				t.Errorf("ListQuery(%q) = %+v, want %+v", test.query, got, test.want)
			}
		})
	}
}

func TestListParams_Skip(t *testing.T) {
	p := ListParams{Page: 3, Limit: 10}
	if p.Skip() != 20 {
		t.Errorf("expected skip 20, got %d", p.Skip())
	}
	p = ListParams{Page: 1, Limit: 10}
	if p.Skip() != 0 {
		t.Errorf("expected skip 0, got %d", p.Skip())
	}
}
