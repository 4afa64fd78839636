// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
// Keep this as an int because most call sites add/subtract and then
// cast to int64 for Mongo Find().SetSkip()/SetLimit().
const PageSize = 25

// ParsePage extracts the human-friendly "page" query parameter (1-based).
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window describes one page of a list whose total size is known.
type Window struct {
	Page     int
	PageSize int
	Total    int64

	Start int // 1-based index of the first row shown (0 if none)
	End   int // 1-based index of the last row shown (0 if none)

	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Pages    int
}

// Skip returns the number of rows before this page.
func (w Window) Skip() int64 {
	return int64((w.Page - 1) * w.PageSize)
}

// Limit returns the page size as int64 for Mongo options.
func (w Window) Limit() int64 {
	return int64(w.PageSize)
}

// NewWindow computes the window for page given total rows. A page past the
// end is clamped to the last page. pageSize <= 0 means PageSize.
func NewWindow(page, pageSize int, total int64) Window {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	if page < 1 {
		page = 1
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		page = pages
	}

	w := Window{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
		HasPrev:  page > 1,
		HasNext:  page < pages,
		PrevPage: page - 1,
		NextPage: page + 1,
	}
	if total > 0 {
		w.Start = (page-1)*pageSize + 1
		end := int64(page * pageSize)
		if end > total {
			end = total
		}
		w.End = int(end)
	}
	return w
}

// Slice returns the rows of all that fall inside w. Use it when the full
// result set is already in memory (search hits).
func Slice[T any](all []T, w Window) []T {
	lo := int(w.Skip())
	if lo >= len(all) {
		return nil
	}
	hi := lo + w.PageSize
	if hi > len(all) {
		hi = len(all)
	}
	return all[lo:hi]
}
