package serializers

import (
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

// Paginated is the list envelope. Next and Previous are absolute links to the
// neighbouring pages, or null at the ends.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPaginated builds the envelope for one page. requestURL is the URL that
// produced the page; its other query parameters are kept in the links.
func NewPaginated[T any](results []T, count int64, page services.Page, requestURL *url.URL) Paginated[T] {
	if results == nil {
		results = []T{}
	}
	p := Paginated[T]{Count: count, Results: results}

	if int64(page.Number*page.Limit) < count {
		p.Next = pageLink(requestURL, page.Number+1)
	}
	if page.Number > 1 {
		p.Previous = pageLink(requestURL, page.Number-1)
	}
	return p
}

func pageLink(requestURL *url.URL, number int) *string {
	u := *requestURL
	query := u.Query()
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	link := u.String()
	return &link
}
