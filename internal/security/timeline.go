package security

import "github.com/femar/gestao/internal/shared"

// Page size bounds for timeline listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Result is one page of the timeline.
type Result struct {
	Events []Event           `json:"events"`
	Paging shared.Pagination `json:"paging"`
}

// Timeline returns page of the events matching f, newest first. Out of range
// page sizes are clamped to [1, MaxPageSize].
func (l *Log) Timeline(f Filter, page, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	matched := l.Query(f)
	paging := shared.NewPagination(page, pageSize, len(matched))
	start, end := paging.Window()
	return Result{Events: matched[start:end], Paging: paging}
}
