package pagination

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		number   int
		size     int
		wantSize int
		wantErr  bool
	}{
		{name: "in range", number: 1, size: 5, wantSize: 5},
		{name: "upper bound", number: 2, size: 100, wantSize: 100},
		{name: "too large clamps", number: 1, size: 500, wantSize: MaxPageSize},
		{name: "zero clamps", number: 1, size: 0, wantSize: MinPageSize},
		{name: "negative size clamps", number: 3, size: -4, wantSize: MinPageSize},
		{name: "zero page", number: 0, size: 5, wantErr: true},
		{name: "negative page", number: -1, size: 5, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewRequest(tc.number, tc.size)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.number, req.Number)
			assert.Equal(t, tc.wantSize, req.Size)
		})
	}
}

func TestRequestOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Request{Number: 1, Size: 5}.Offset())
	assert.Equal(t, 10, Request{Number: 3, Size: 5}.Offset())
	assert.Equal(t, math.MaxInt-math.MaxInt%100, Request{Number: math.MaxInt/100 + 1, Size: 100}.Offset())
}

func TestRequestOffset_SaturatesInsteadOfWrapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number int
		size   int
	}{
		{number: 4611686018427387905, size: 2},
		{number: math.MaxInt, size: MaxPageSize},
		{number: math.MaxInt/MaxPageSize + 2, size: MaxPageSize},
	}

	for _, tc := range tests {
		req, err := NewRequest(tc.number, tc.size)
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt, req.Offset(), "pgnum=%d pgsize=%d", tc.number, tc.size)
	}
}

func TestFetch_HugePageNumberIsPastTheEnd(t *testing.T) {
	t.Parallel()

	req, err := NewRequest(4611686018427387905, 2)
	require.NoError(t, err)

	page, err := Fetch(context.Background(), req, sliceQuery([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 4611686018427387905, page.PageNumber)
}

// sliceQuery pages over ids the way a store would.
func sliceQuery(ids []int) QueryFunc[int] {
	return func(_ context.Context, offset, limit int) ([]int, int, error) {
		if offset >= len(ids) {
			return nil, len(ids), nil
		}
		end := offset + limit
		if end > len(ids) {
			end = len(ids)
		}
		return ids[offset:end], len(ids), nil
	}
}

func TestFetch_WalksAllPages(t *testing.T) {
	t.Parallel()

	ids := []int{1, 2, 3, 4, 5, 6, 7}
	const size = 3
	var seen []int

	for n := 1; n <= TotalPages(len(ids), size); n++ {
		req, err := NewRequest(n, size)
		require.NoError(t, err)

		page, err := Fetch(context.Background(), req, sliceQuery(ids))
		require.NoError(t, err)
		assert.Equal(t, len(ids), page.TotalCount)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, n, page.PageNumber)
		assert.Equal(t, size, page.PageSize)
		seen = append(seen, page.Items...)
	}
	assert.Equal(t, ids, seen)
}

func TestFetch_PastLastPage(t *testing.T) {
	t.Parallel()

	ids := []int{1, 2, 3, 4, 5}
	req, err := NewRequest(TotalPages(len(ids), 2)+1, 2)
	require.NoError(t, err)

	page, err := Fetch(context.Background(), req, sliceQuery(ids))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.TotalCount)
}

func TestFetch_PassesOffsetAndLimit(t *testing.T) {
	t.Parallel()

	var gotOffset, gotLimit int
	q := func(_ context.Context, offset, limit int) ([]int, int, error) {
		gotOffset, gotLimit = offset, limit
		return []int{}, 0, nil
	}

	_, err := Fetch(context.Background(), Request{Number: 4, Size: 25}, q)
	require.NoError(t, err)
	assert.Equal(t, 75, gotOffset)
	assert.Equal(t, 25, gotLimit)
}

func TestFetch_QueryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	q := func(context.Context, int, int) ([]int, int, error) { return nil, 0, boom }

	_, err := Fetch(context.Background(), Request{Number: 1, Size: 5}, q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
	assert.Equal(t, 0, TotalPages(3, 0))
}
