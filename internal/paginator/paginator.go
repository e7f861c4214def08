// Package paginator splits ordered record sequences into fixed-size pages.
//
// Bad page input never fails: anything that is not a positive integer
// resolves to the first page, anything past the end resolves to the last
// page. The paginator does not sort; callers hand it sequences that are
// already ordered.
package paginator

import (
	"strconv"
	"strings"
)

// PageSize is the number of posts shown on every feed page.
const PageSize = 10

// Page is one window of an ordered sequence.
type Page[T any] struct {
	Items    []T
	Total    int64 // number of items across all pages
	Number   int   // 1-based
	NumPages int
	Size     int
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page[T]) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// Offset is the index of the first item of the page in the full sequence.
func (p Page[T]) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pages lists every page number, for rendering page links.
func (p Page[T]) Pages() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Resolve turns the raw page parameter into a valid page number for a
// sequence of total items. An empty sequence still has one (empty) page.
func Resolve(requested string, total int64, size int) (number, numPages int) {
	if size < 1 {
		size = PageSize
	}
	numPages = int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(requested))
	switch {
	case err != nil, number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}
	return number, numPages
}

// Window describes the requested page of a sequence that lives elsewhere
// (usually the database). Items is left empty for the caller to fetch
// using Offset and Size.
func Window[T any](total int64, size int, requested string) Page[T] {
	if size < 1 {
		size = PageSize
	}
	number, numPages := Resolve(requested, total, size)
	return Page[T]{
		Items:    []T{},
		Total:    total,
		Number:   number,
		NumPages: numPages,
		Size:     size,
	}
}

// Paginate slices an in-memory ordered sequence.
func Paginate[T any](items []T, size int, requested string) Page[T] {
	page := Window[T](int64(len(items)), size, requested)
	start := page.Offset()
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	if start < end {
		page.Items = items[start:end]
	}
	return page
}
