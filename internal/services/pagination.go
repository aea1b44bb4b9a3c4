package services

import (
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Page is a 1-based page number with a page size
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// ParsePage reads the page and limit query parameters
func ParsePage(query url.Values) (Page, error) {
	page := Page{Number: 1, Limit: DefaultPageSize}
	verr := &ValidationError{}

	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("page", "page must be a positive integer")
		} else {
			page.Number = n
		}
	}
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			verr.Add("limit", "limit must be an integer between 1 and "+strconv.Itoa(MaxPageSize))
		} else {
			page.Limit = n
		}
	}
	return page, verr.OrNil()
}

// ParseRecipesLimit reads recipes_limit; a missing value means no truncation (-1)
func ParseRecipesLimit(query url.Values) (int, error) {
	raw := query.Get("recipes_limit")
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		verr := &ValidationError{}
		verr.Add("recipes_limit", "recipes_limit must be a non-negative integer")
		return 0, verr
	}
	return n, nil
}
