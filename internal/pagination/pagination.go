package pagination

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*page_size within a 32-bit OFFSET.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps page to [1, MaxPage] and page size to [1, MaxPageSize],
// applying DefaultPageSize when unset.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Params) Limit() int {
	return p.Normalize().PageSize
}

type Result[T any] struct {
	Data       []T `json:"data"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewResult[T any](data []T, count int, p Params) *Result[T] {
	n := p.Normalize()
	if data == nil {
		data = []T{}
	}
	return &Result[T]{
		Data:       data,
		Count:      count,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalPages: TotalPages(count, n.PageSize),
	}
}

// TotalPages is ceil(count / pageSize); 0 when either is non-positive.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
