// Package listing holds the pagination and filter plumbing shared by every
// paginated read in the back office.
package listing

import (
	"math"
	"time"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query is a normalized list request.
type Query struct {
	Page     int
	Limit    int
	Search   string
	FromDate *time.Time
	ToDate   *time.Time
}

// Normalize clamps pagination and snaps date bounds to midnight, mirroring how
// callers submit inclusive day ranges.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.FromDate = midnight(q.FromDate)
	q.ToDate = midnight(q.ToDate)
	return q
}

// Offset returns the row offset for the normalized page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

func midnight(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &d
}

// Pagination is the envelope returned next to every list payload.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// NewPagination computes the page count for a result set.
func NewPagination(total int64, q Query) Pagination {
	pages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return Pagination{Total: total, Page: q.Page, Pages: pages, Limit: q.Limit}
}
