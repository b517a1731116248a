package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultSize replaces non-positive page sizes.
const DefaultSize = 10

var ErrUnknownShape = errors.New("page: payload is neither a list nor an envelope")

// Page is the canonical windowed view handed to callers. Page is 1-based and
// TotalPages is never below 1.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Source is a raw paged response in one of the shapes the remote API produces.
// Implemented by List and Envelope only.
type Source[T any] interface {
	source()
}

// List is a bare ordered sequence with no paging metadata.
type List[T any] []T

func (List[T]) source() {}

// Envelope is an offset/size paged response with a 0-based page number.
// Every metadata field is optional.
type Envelope[T any] struct {
	Content       []T  `json:"content"`
	TotalElements *int `json:"totalElements"`
	TotalPages    *int `json:"totalPages"`
	Number        *int `json:"number"`
	Size          *int `json:"size"`
}

func (Envelope[T]) source() {}

// Normalize turns any Source into a Page. Missing envelope fields fall back to
// fallbackPage/fallbackSize and the content length.
func Normalize[T any](raw Source[T], fallbackPage, fallbackSize int) Page[T] {
	fallbackPage, fallbackSize = sanitize(fallbackPage, fallbackSize)
	switch v := raw.(type) {
	case List[T]:
		return fromList(v, fallbackPage, fallbackSize)
	case Envelope[T]:
		return fromEnvelope(v, fallbackSize)
	case *Envelope[T]:
		if v == nil {
			break
		}
		return fromEnvelope(*v, fallbackSize)
	}
	return Page[T]{Items: []T{}, Page: fallbackPage, PageSize: fallbackSize, TotalPages: 1}
}

func fromList[T any](items List[T], pageIndex, size int) Page[T] {
	total := len(items)
	start := (pageIndex - 1) * size
	out := []T{}
	if start < total {
		end := start + size
		if end > total {
			end = total
		}
		out = append(out, items[start:end]...)
	}
	return Page[T]{
		Items:      out,
		Page:       pageIndex,
		PageSize:   size,
		Total:      total,
		TotalPages: CountPages(total, size),
	}
}

func fromEnvelope[T any](env Envelope[T], fallbackSize int) Page[T] {
	items := append([]T{}, env.Content...)
	number := 0
	if env.Number != nil && *env.Number > 0 {
		number = *env.Number
	}
	size := fallbackSize
	if env.Size != nil && *env.Size > 0 {
		size = *env.Size
	}
	total := len(items)
	if env.TotalElements != nil && *env.TotalElements >= 0 {
		total = *env.TotalElements
	}
	totalPages := 1
	if env.TotalPages != nil {
		totalPages = max(1, *env.TotalPages)
	}
	return Page[T]{
		Items:      items,
		Page:       number + 1,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// CountPages returns max(1, ceil(total/size)).
func CountPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return max(1, (total+size-1)/size)
}

// Paginate filters items with match (nil matches everything) and returns the
// requested window. The page index is clamped to the valid range, so a page
// past the end after a filter change yields the last page instead of nothing.
// items is never modified.
func Paginate[T any](items []T, match func(T) bool, pageIndex, size int) Page[T] {
	pageIndex, size = sanitize(pageIndex, size)
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if match == nil || match(item) {
			filtered = append(filtered, item)
		}
	}
	total := len(filtered)
	totalPages := CountPages(total, size)
	if pageIndex > totalPages {
		pageIndex = totalPages
	}
	start := (pageIndex - 1) * size
	end := min(start+size, total)
	out := []T{}
	if start < end {
		out = append(out, filtered[start:end]...)
	}
	return Page[T]{
		Items:      out,
		Page:       pageIndex,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Map converts the items of p keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// Decode picks the Source variant from the first JSON token of data.
func Decode[T any](data []byte) (Source[T], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return List[T]{}, nil
	}
	switch trimmed[0] {
	case '[':
		var list List[T]
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("page: decode list: %w", err)
		}
		return list, nil
	case '{':
		var env Envelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("page: decode envelope: %w", err)
		}
		return env, nil
	default:
		return nil, ErrUnknownShape
	}
}

func sanitize(pageIndex, size int) (int, int) {
	if pageIndex < 1 {
		pageIndex = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	return pageIndex, size
}
