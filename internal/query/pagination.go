// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidPage is returned for page numbers that are not positive
// integers or that lie past the last page.
var ErrInvalidPage = errors.New("invalid page")

// ParsePage parses the ?page= query value. Empty means the first page.
func ParsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrInvalidPage
	}
	return n, nil
}

// Pagination describes where a page sits within a feed.
type Pagination struct {
	Number     int
	TotalPages int
	TotalItems int
}

// NewPagination validates page against total items. An empty feed still
// has one (empty) first page; any page past the last is ErrInvalidPage.
func NewPagination(page, total int) (Pagination, error) {
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 || page > pages {
		return Pagination{}, ErrInvalidPage
	}
	return Pagination{Number: page, TotalPages: pages, TotalItems: total}, nil
}

// HasPrevious reports whether a previous page exists.
func (p Pagination) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Number < p.TotalPages }

// Previous returns the previous page number.
func (p Pagination) Previous() int { return p.Number - 1 }

// Next returns the next page number.
func (p Pagination) Next() int { return p.Number + 1 }
