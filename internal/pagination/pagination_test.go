package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Normalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 1, PageSize: MaxPageSize}, Params{Page: -4, PageSize: 1000}.Normalize())
	assert.Equal(t, Params{Page: 3, PageSize: 15}, Params{Page: 3, PageSize: 15}.Normalize())
}

func TestParams_OffsetLimit(t *testing.T) {
	p := Params{Page: 3, PageSize: 25}
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())

	assert.Equal(t, 0, Params{}.Offset())
}

func TestParams_OffsetHugePage(t *testing.T) {
	for _, page := range []int{math.MaxInt, math.MaxInt / 20, MaxPage + 1} {
		p := Params{Page: page, PageSize: MaxPageSize}
		assert.GreaterOrEqual(t, p.Offset(), 0, "page %d", page)
		assert.LessOrEqual(t, p.Offset(), math.MaxInt32, "page %d", page)
		assert.Equal(t, MaxPage, p.Normalize().Page)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestNewResult(t *testing.T) {
	r := NewResult[string](nil, 41, Params{Page: 2, PageSize: 20})

	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
	assert.Equal(t, 41, r.Count)
	assert.Equal(t, 2, r.Page)
	assert.Equal(t, 20, r.PageSize)
	assert.Equal(t, 3, r.TotalPages)
}

// Walking every page by offset covers each index exactly once.
func TestParams_PagesCoverRange(t *testing.T) {
	const count = 47
	for _, size := range []int{1, 5, 20, 47, 100} {
		seen := make(map[int]int)
		pages := TotalPages(count, size)
		for page := 1; page <= pages; page++ {
			p := Params{Page: page, PageSize: size}
			for i := p.Offset(); i < p.Offset()+p.Limit() && i < count; i++ {
				seen[i]++
			}
		}
		assert.Len(t, seen, count, "size %d", size)
		for idx, n := range seen {
			assert.Equal(t, 1, n, "index %d seen %d times with size %d", idx, n, size)
		}
	}
}
