// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in paged lists.
const PageSize = 20

// MaxPageSize caps the "size" query parameter.
const MaxPageSize = 100

// MaxPage caps the "page" and "shown" query parameters so offsets computed
// from them stay far from integer overflow.
const MaxPage = 100000

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	return clampPage(parsePositive(query.Get(r, "page"), 1))
}

// ParseSize extracts the "size" query parameter, falling back to def and
// clamping to MaxPageSize.
func ParseSize(r *http.Request, def int) int {
	n := parsePositive(query.Get(r, "size"), def)
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParseShown extracts the "show more" counter ("shown", 1-based).
func ParseShown(r *http.Request) int {
	return clampPage(parsePositive(query.Get(r, "shown"), 1))
}

func clampPage(n int) int {
	if n > MaxPage {
		return MaxPage
	}
	return n
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Range describes the slice of a list returned to the client.
type Range struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Start   int  `json:"start"` // 1-based start index (0 if no results)
	End     int  `json:"end"`   // 1-based end index (0 if no results)
	Total   int  `json:"total"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Slice returns page (1-based) of rows using size rows per page.
// Pages past the end return an empty slice with HasPrev set.
func Slice[T any](rows []T, page, size int) ([]T, Range) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}
	total := len(rows)
	// compare before multiplying so huge pages cannot overflow
	if page-1 >= (total+size-1)/size {
		return []T{}, Range{Page: page, Size: size, Total: total, HasPrev: page > 1}
	}
	from := (page - 1) * size
	to := from + size
	if to > total {
		to = total
	}
	return rows[from:to], Range{
		Page:    page,
		Size:    size,
		Start:   from + 1,
		End:     to,
		Total:   total,
		HasPrev: page > 1,
		HasNext: to < total,
	}
}

// ShowMore returns the first shown*size rows, the "show more" style used by
// the leaderboard. HasNext reports whether another click would reveal more.
func ShowMore[T any](rows []T, shown, size int) ([]T, Range) {
	if shown < 1 {
		shown = 1
	}
	if size < 1 {
		size = PageSize
	}
	total := len(rows)
	n := total
	if shown <= total/size {
		n = shown * size
	}
	r := Range{Page: shown, Size: size, Total: total, HasNext: n < total}
	if n > 0 {
		r.Start, r.End = 1, n
	}
	return rows[:n], r
}

// Window builds the Range for a page fetched from the database with
// skip/limit, where n rows came back out of total.
func Window(page, size, total, n int) Range {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}
	page = clampPage(page)
	from := (page - 1) * size
	r := Range{Page: page, Size: size, Total: total, HasPrev: page > 1, HasNext: from+n < total}
	if n > 0 {
		r.Start, r.End = from+1, from+n
	}
	return r
}
