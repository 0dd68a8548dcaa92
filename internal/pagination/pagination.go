package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Pagination carries the normalized page/per_page pair parsed from a request.
// Page and PerPage are floored at 1; missing or malformed values fall back to
// the defaults.
type Pagination struct {
	Page    int
	PerPage int
}

func New(page, perPage int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func FromRequest(r *http.Request) Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return New(page, perPage)
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) Limit() int {
	return p.PerPage
}

// CountedPage is the paged-response shape used when a total count was taken.
type CountedPage struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Items      any   `json:"items"`
	TotalData  int64 `json:"total_data"`
	TotalPages int64 `json:"total_pages"`
}

// Page is the uncounted paged-response shape. HasNext is a heuristic: it is
// true whenever a full page came back, so a final page that happens to hold
// exactly per_page rows reports has_next even though the next page is empty.
type Page struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Items   any  `json:"items"`
	HasNext bool `json:"has_next"`
}

func (p Pagination) BuildCounted(items any, totalData int64) CountedPage {
	perPage := int64(p.PerPage)
	totalPages := totalData / perPage
	if totalData%perPage != 0 {
		totalPages++
	}
	return CountedPage{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Items:      items,
		TotalData:  totalData,
		TotalPages: totalPages,
	}
}

func (p Pagination) BuildUncounted(items any, itemCount int) Page {
	return Page{
		Page:    p.Page,
		PerPage: p.PerPage,
		Items:   items,
		HasNext: itemCount >= p.PerPage,
	}
}
