// Package listing applies dashboard search and pagination over a full
// in-memory collection.
package listing

import (
	"math"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// FieldAll matches the search term against every registered field.
	FieldAll = "all"
)

type Query struct {
	Page   int
	Limit  int
	Search string
	Field  string
}

type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Fields maps a search field name to an accessor returning its text.
type Fields[T any] map[string]func(T) string

func (q Query) normalized() Query {
	if q.Page <= 0 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Field = strings.TrimSpace(q.Field)
	if q.Field == "" {
		q.Field = FieldAll
	}
	return q
}

// Filter keeps items where the search term is a case-insensitive substring of
// the selected field, or of any field for FieldAll. An unknown field matches
// nothing.
func Filter[T any](items []T, fields Fields[T], search, field string) []T {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return items
	}
	if field == "" {
		field = FieldAll
	}

	result := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, fields, term, field) {
			result = append(result, item)
		}
	}
	return result
}

func matches[T any](item T, fields Fields[T], term, field string) bool {
	if field != FieldAll {
		get, ok := fields[field]
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(get(item)), term)
	}
	for _, get := range fields {
		if strings.Contains(strings.ToLower(get(item)), term) {
			return true
		}
	}
	return false
}

// Paginate filters then slices (page-1)*limit .. page*limit.
func Paginate[T any](items []T, fields Fields[T], q Query) Page[T] {
	q = q.normalized()
	filtered := Filter(items, fields, q.Search, q.Field)

	total := len(filtered)
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]T, end-start)
	copy(data, filtered[start:end])

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
	}
}
