// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Paging defaults applied to every list endpoint.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset well inside int range.
	MaxPageNumber = 1_000_000
)

// Page is a normalised page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps raw query values into a usable page request.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination is the metadata block returned alongside list results.
type Pagination struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	PageCount int `json:"pageCount"`
}

// NewPagination builds the metadata for a page given the total row count.
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{Page: p.Number, Limit: p.Size, Total: total, PageCount: pages}
}
