// Package paging holds the page request, the response envelope and the page
// arithmetic shared by every listing.
package paging

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/errs"
)

const (
	DefaultPage         = 1
	DefaultItemsPerPage = 20
)

// Request is a 1-based page selection.
type Request struct {
	Page         int
	ItemsPerPage int
}

// Validate rejects non-positive values, pages whose offset does not fit in an
// int and, when max > 0, page sizes above max.
func (r Request) Validate(max int) error {
	if r.Page < 1 || r.ItemsPerPage < 1 {
		return errs.Invalid("Request contained one or more invalid paging values.")
	}
	if max > 0 && r.ItemsPerPage > max {
		return errs.Invalid("itemsPerPage must be <= %d", max)
	}
	if r.Page > MaxPage(r.ItemsPerPage) {
		return errs.Invalid("page must be <= %d for itemsPerPage %d", MaxPage(r.ItemsPerPage), r.ItemsPerPage)
	}
	return nil
}

// MaxPage is the last page number whose offset and end row fit in an int.
func MaxPage(perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (math.MaxInt-perPage)/perPage + 1
}

// Offset is the number of ordered rows before the first item of the page.
// It is only meaningful for a request that passed Validate.
func (r Request) Offset() int { return (r.Page - 1) * r.ItemsPerPage }

// TotalPages returns ceil(total/perPage) using exact decimal division.
func TotalPages(total int64, perPage int) int {
	if total <= 0 || perPage < 1 {
		return 0
	}
	q, rem := decimal.NewFromInt(total).QuoRem(decimal.NewFromInt(int64(perPage)), 0)
	if !rem.IsZero() {
		q = q.Add(decimal.NewFromInt(1))
	}
	return int(q.IntPart())
}

// Page is the envelope returned by listings and lookups.
type Page[T any] struct {
	Items           []T   `json:"items"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// New builds the envelope for one page of a listing with total rows overall.
func New[T any](items []T, total int64, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := TotalPages(total, req.ItemsPerPage)
	return Page[T]{
		Items:           items,
		TotalItems:      total,
		TotalPages:      pages,
		CurrentPage:     req.Page,
		ItemsPerPage:    req.ItemsPerPage,
		HasPreviousPage: req.Page > 1,
		HasNextPage:     req.Page < pages,
	}
}

// Single wraps an unpaged result as page 1 of 1.
func Single[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:        items,
		TotalItems:   int64(len(items)),
		TotalPages:   1,
		CurrentPage:  1,
		ItemsPerPage: len(items),
	}
}

// Map converts the items of p, keeping the paging fields.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Page[U]{
		Items:           out,
		TotalItems:      p.TotalItems,
		TotalPages:      p.TotalPages,
		CurrentPage:     p.CurrentPage,
		ItemsPerPage:    p.ItemsPerPage,
		HasPreviousPage: p.HasPreviousPage,
		HasNextPage:     p.HasNextPage,
	}
}
