package domain

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*MaxLimit well inside int64.
	MaxPage = math.MaxInt32
)

type PageParams struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for this page. It saturates at
// math.MaxInt instead of wrapping, so a page past the end stays empty.
func (p PageParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage assembles a page. total is counted independently of the fetch, so
// it may disagree with len(items) under concurrent writes.
func NewPage[T any](items []T, params PageParams, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if params.Limit > 0 {
		pages = (total + params.Limit - 1) / params.Limit
	}
	return Page[T]{
		Data: items,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
			Pages: pages,
		},
	}
}
