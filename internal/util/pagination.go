package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate normalizes page and size and returns the page actually served
// with its window. Pages past the last addressable one are clamped so the
// offset never overflows.
func Calculate(page, size int) (normPage, offset, limit int) {
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if last := math.MaxInt / size; page > last {
		page = last
	}
	return page, (page - 1) * size, size
}

// Slice returns the window [offset, offset+limit) of items, clamped to its bounds.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 || limit < 1 || offset >= len(items) {
		return []T{}
	}
	if limit > len(items)-offset {
		return items[offset:]
	}
	return items[offset : offset+limit]
}
