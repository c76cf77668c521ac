package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

func clampLimit(n int) int {
	switch {
	case n < 1:
		return defaultPerPage
	case n > maxPerPage:
		return maxPerPage
	}
	return n
}

// PaginationParams are the page/per_page query parameters of list endpoints
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// Validate clamps the parameters into range
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = clampLimit(p.PerPage)
}

// Offset is the number of rows to skip for the requested page
func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes where a page sits in the full result
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination builds the pagination block for page out of total rows
func NewPagination(page, perPage int, total int64) *Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// PaginatedResult is one page of items
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult wraps items with their pagination block. A nil slice
// is reported as an empty list.
func NewPaginatedResult[T any](items []T, p *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{Items: items, Pagination: p}
}

// Cursor points at the last row of the previous page. Rows are keyed on
// their auto-increment id, so ids only grow.
type Cursor struct {
	ID uint `json:"id"`
}

// CursorParams are the cursor/limit query parameters of receipt listings.
// Results are returned newest first.
type CursorParams struct {
	Cursor string `form:"cursor" json:"cursor"`
	Limit  int    `form:"limit" json:"limit"`
}

// Validate clamps the limit into range
func (c *CursorParams) Validate() {
	c.Limit = clampLimit(c.Limit)
}

// DecodeCursor decodes the opaque cursor; an empty cursor yields nil
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	var cursor Cursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor data: %w", err)
	}
	return &cursor, nil
}

func encodeCursor(id uint) string {
	raw, _ := json.Marshal(Cursor{ID: id})
	return base64.URLEncoding.EncodeToString(raw)
}

// CursorPagination tells the caller how to fetch the next page
type CursorPagination struct {
	NextCursor *string `json:"next_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	Limit      int     `json:"limit"`
}

// CursorPaginatedResult is one cursor page of items
type CursorPaginatedResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination *CursorPagination `json:"pagination"`
}

// NewCursorPaginatedResult trims items fetched with limit+1 and builds the
// next cursor from the last item kept
func NewCursorPaginatedResult[T any](items []T, limit int, getID func(T) uint) *CursorPaginatedResult[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}

	p := &CursorPagination{Limit: limit, HasNext: hasMore}
	if hasMore && len(items) > 0 {
		next := encodeCursor(getID(items[len(items)-1]))
		p.NextCursor = &next
	}

	return &CursorPaginatedResult[T]{Items: items, Pagination: p}
}
