package query

import (
	"net/url"
	"testing"
)

func parseValues(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery(%q): %v", raw, err)
	}
	return values
}

func TestParse_Defaults(t *testing.T) {
	p := Parse(url.Values{}, Defaults{Limit: 20})

	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if p.Limit != 20 {
		t.Errorf("limit = %d, want 20", p.Limit)
	}
	if p.SortBy != "createdAt" || p.SortOrder != "desc" {
		t.Errorf("sort = %s/%s, want createdAt/desc", p.SortBy, p.SortOrder)
	}
}

func TestParse_Normalization(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantPage  int
		wantLimit int
	}{
		{"negative page floors to 1", "page=-3", 1, 20},
		{"zero page floors to 1", "page=0", 1, 20},
		{"garbage page uses default", "page=abc", 1, 20},
		{"zero limit uses default", "limit=0", 1, 20},
		{"negative limit uses default", "limit=-5", 1, 20},
		{"oversized limit clamps", "limit=5000", 1, MaxLimit},
		{"valid values pass through", "page=4&limit=50", 4, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Parse(parseValues(t, tc.raw), Defaults{Limit: 20})
			if p.Page != tc.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tc.wantPage)
			}
			if p.Limit != tc.wantLimit {
				t.Errorf("limit = %d, want %d", p.Limit, tc.wantLimit)
			}
		})
	}
}

func TestParse_SortOrderValidated(t *testing.T) {
	p := Parse(parseValues(t, "sortOrder=sideways"), Defaults{})
	if p.SortOrder != "desc" {
		t.Errorf("sortOrder = %q, want fallback desc", p.SortOrder)
	}

	p = Parse(parseValues(t, "sortOrder=asc"), Defaults{})
	if p.SortOrder != "asc" {
		t.Errorf("sortOrder = %q, want asc", p.SortOrder)
	}
	if p.SortDirection() != 1 {
		t.Errorf("direction = %d, want 1", p.SortDirection())
	}
}

func TestWithFilter_CopyOnWrite(t *testing.T) {
	p := Parse(url.Values{}, Defaults{})
	withStatus := p.WithFilter("status", "active")

	if len(p.Filter) != 0 {
		t.Errorf("original filter mutated: %v", p.Filter)
	}
	if withStatus.Filter["status"] != "active" {
		t.Errorf("filter = %v, want status=active", withStatus.Filter)
	}
}

func TestSelector_CombinesFilterAndSearch(t *testing.T) {
	p := Parse(url.Values{}, Defaults{}).
		WithFilter("status", "active").
		WithSearch("transformer")

	sel := p.Selector()
	if sel["status"] != "active" {
		t.Errorf("selector missing status filter: %v", sel)
	}
	if _, ok := sel["$text"]; !ok {
		t.Errorf("selector missing $text condition: %v", sel)
	}
}

func TestSkip(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if p.Skip() != 20 {
		t.Errorf("skip = %d, want 20", p.Skip())
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		name       string
		total      int64
		page       int
		limit      int
		wantPages  int
		wantNext   bool
		wantPrev   bool
	}{
		{"middle page", 25, 2, 10, 3, true, true},
		{"last partial page", 25, 3, 10, 3, false, true},
		{"first page", 25, 1, 10, 3, true, false},
		{"exact division", 30, 3, 10, 3, false, true},
		{"empty collection", 0, 1, 10, 0, false, false},
		{"page beyond last", 5, 99, 10, 1, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pg := Paginate(tc.total, Params{Page: tc.page, Limit: tc.limit})
			if pg.TotalPages != tc.wantPages {
				t.Errorf("totalPages = %d, want %d", pg.TotalPages, tc.wantPages)
			}
			if pg.HasNextPage != tc.wantNext {
				t.Errorf("hasNextPage = %t, want %t", pg.HasNextPage, tc.wantNext)
			}
			if pg.HasPrevPage != tc.wantPrev {
				t.Errorf("hasPrevPage = %t, want %t", pg.HasPrevPage, tc.wantPrev)
			}
			if pg.TotalCount != tc.total {
				t.Errorf("totalCount = %d, want %d", pg.TotalCount, tc.total)
			}
		})
	}
}
