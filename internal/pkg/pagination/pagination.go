package pagination

import (
	"math"
	"strconv"
)

// Pagination represents pagination metadata
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
	Offset  int   `json:"-"`
}

// PaginationRequest represents a pagination request from client
type PaginationRequest struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// New creates a new pagination instance
func New(page, limit int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page = clampPage(page, limit)

	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		pages = 1
	}

	return &Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
		Offset:  (page - 1) * limit,
	}
}

// FromRequest creates pagination from HTTP request parameters
func FromRequest(pageStr, limitStr string) *PaginationRequest {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page = clampPage(page, limit)

	return &PaginationRequest{
		Page:  page,
		Limit: limit,
	}
}

// Bounds returns the [start, end) slice indexes of the current page within
// an in-memory list of Total items.
func (p *Pagination) Bounds() (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if int64(start) > p.Total {
		start = int(p.Total)
	}
	end := start + p.Limit
	if int64(end) > p.Total {
		end = int(p.Total)
	}
	return start, end
}

// clampPage keeps (page-1)*limit inside int.
func clampPage(page, limit int) int {
	if maxPage := math.MaxInt / limit; page > maxPage {
		return maxPage
	}
	return page
}
