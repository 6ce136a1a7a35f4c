// Package pagination holds the page arithmetic shared by every listing collection.
package pagination

import "math"

// DefaultPageSize is the page size of every collection endpoint unless configured otherwise.
const DefaultPageSize = 2

// Window is the slice of a collection addressed by one page request.
type Window struct {
	Skip       int
	Limit      int
	Page       int
	TotalPages int
}

// Normalize clamps a 1-based page number; anything below 1 is page 1.
func Normalize(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Skip is the number of documents preceding page. It saturates at math.MaxInt, so a page
// number too large to address still yields a non-negative skip past every document.
func Skip(page, size int) int {
	if size <= 0 {
		return 0
	}
	n := Normalize(page) - 1
	if n > math.MaxInt/size {
		return math.MaxInt
	}
	return n * size
}

// Paginate computes the window for page over a collection of total documents.
// A page past the end is a valid, empty window.
func Paginate(total int64, page, size int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	w := Window{
		Skip:  Skip(page, size),
		Limit: size,
		Page:  Normalize(page),
	}
	if total > 0 {
		w.TotalPages = int((total + int64(size) - 1) / int64(size))
	}
	return w
}
