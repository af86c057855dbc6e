// ABOUTME: Offset/limit windowing with page metadata.
// ABOUTME: Applied to child summaries after aggregation, never to raw rows first.
package children

import (
	"errors"
	"math"

	"github.com/harperreed/growth/internal/models"
)

// ErrInvalidWindow is returned for a non-positive limit, negative offset,
// page below 1 or a page whose offset does not fit in an int.
var ErrInvalidWindow = errors.New("invalid pagination window")

// Window is an offset/limit slice request.
type Window struct {
	Offset int
	Limit  int
}

// NewWindow validates offset and limit.
func NewWindow(offset, limit int) (*Window, error) {
	if limit <= 0 || offset < 0 {
		return nil, ErrInvalidWindow
	}
	return &Window{Offset: offset, Limit: limit}, nil
}

// WindowFromPage converts a 1-based page number and page size to a Window.
func WindowFromPage(page, limit int) (*Window, error) {
	if page < 1 || limit <= 0 {
		return nil, ErrInvalidWindow
	}
	if page-1 > math.MaxInt/limit {
		return nil, ErrInvalidWindow
	}
	return NewWindow((page-1)*limit, limit)
}

// PageMeta describes where a page sits in the full result.
type PageMeta struct {
	Page      int `json:"page"`
	PerPage   int `json:"per_page"`
	PageSize  int `json:"page_size"`
	TotalData int `json:"total_data"`
}

// BuildMeta computes page metadata for total items.
func BuildMeta(w Window, total int) *PageMeta {
	pages := total / w.Limit
	if total%w.Limit != 0 {
		pages++
	}
	return &PageMeta{
		Page:      w.Offset/w.Limit + 1,
		PerPage:   w.Limit,
		PageSize:  pages,
		TotalData: total,
	}
}

// Page is a window of rows plus its metadata. Meta is nil when no window
// was requested.
type Page[T any] struct {
	Rows []T       `json:"rows"`
	Meta *PageMeta `json:"meta,omitempty"`
}

// Paginate slices rows by w. A nil w returns every row with no meta; an
// offset past the end returns no rows with correct meta.
func Paginate[T any](rows []T, w *Window) Page[T] {
	if w == nil {
		return Page[T]{Rows: rows}
	}
	start := min(w.Offset, len(rows))
	end := start + min(w.Limit, len(rows)-start)
	return Page[T]{
		Rows: rows[start:end],
		Meta: BuildMeta(*w, len(rows)),
	}
}

// SummarizeAndPaginate aggregates records into child summaries, then windows
// them. Meta counts distinct children.
func SummarizeAndPaginate(records []*models.Measurement, w *Window) Page[*models.ChildSummary] {
	return Paginate(SummarizeAll(records), w)
}
