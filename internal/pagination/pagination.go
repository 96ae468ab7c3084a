// Package pagination turns a filtered, id-ordered query into a bounded page
// with total-count metadata.
package pagination

import (
	"context"
	"fmt"
	"math"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
)

// Page size bounds. Sizes outside them are clamped, never rejected.
const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// Request is a validated page request.
type Request struct {
	Number int
	Size   int
}

// NewRequest validates number (must be >= 1) and clamps size into
// [MinPageSize, MaxPageSize].
func NewRequest(number, size int) (Request, error) {
	if number < 1 {
		return Request{}, domain.NewValidationError("pgnum", "must be greater than or equal to 1", nil)
	}
	switch {
	case size < MinPageSize:
		size = MinPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Request{Number: number, Size: size}, nil
}

// Offset is the number of rows to skip for r. It saturates at math.MaxInt
// so a huge page number lands past the end instead of wrapping.
func (r Request) Offset() int {
	if r.Number <= 1 || r.Size <= 0 {
		return 0
	}
	if r.Number-1 > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return (r.Number - 1) * r.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// QueryFunc fetches up to limit items after skipping offset, ordered by id
// ascending, together with the count of every item matching its filter.
type QueryFunc[T any] func(ctx context.Context, offset, limit int) ([]T, int, error)

// Fetch runs query once for req and assembles the page. A page past the
// end yields no items and the real total.
func Fetch[T any](ctx context.Context, req Request, query QueryFunc[T]) (*Page[T], error) {
	items, total, err := query(ctx, req.Offset(), req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", req.Number, err)
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: req.Number,
		PageSize:   req.Size,
		TotalPages: TotalPages(total, req.Size),
	}, nil
}

// TotalPages is ceil(total/size); zero when there is nothing to show.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
