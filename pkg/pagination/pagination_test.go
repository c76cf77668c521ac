package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		in   PaginationParams
		want PaginationParams
	}{
		{PaginationParams{}, PaginationParams{Page: 1, PerPage: 15}},
		{PaginationParams{Page: 3, PerPage: 500}, PaginationParams{Page: 3, PerPage: 100}},
		{PaginationParams{Page: -2, PerPage: 20}, PaginationParams{Page: 1, PerPage: 20}},
	}
	for _, tt := range tests {
		p := tt.in
		p.Validate()
		assert.Equal(t, tt.want, p)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestCursorRoundTrip(t *testing.T) {
	ids := []uint{9, 8, 7}
	page := NewCursorPaginatedResult(ids, 2, func(id uint) uint { return id })

	require.NotNil(t, page.Pagination.NextCursor)
	assert.Equal(t, []uint{9, 8}, page.Items)
	assert.True(t, page.Pagination.HasNext)

	params := CursorParams{Cursor: *page.Pagination.NextCursor}
	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, uint(8), cursor.ID)

	last := NewCursorPaginatedResult([]uint{7}, 2, func(id uint) uint { return id })
	assert.Nil(t, last.Pagination.NextCursor)
	assert.False(t, last.Pagination.HasNext)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	_, err := (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)

	c, err := (&CursorParams{}).DecodeCursor()
	assert.NoError(t, err)
	assert.Nil(t, c)
}
