package controllers

import (
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Paginated is the envelope of every paginated list
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageFromQuery reads page and limit; malformed values fall back to the defaults
func pageFromQuery(c *gin.Context, defaultSize int) services.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))
	return services.NewPage(number, size, defaultSize)
}

func paginate[T any](c *gin.Context, page services.Page, count int64, results []T) Paginated[T] {
	if results == nil {
		results = []T{}
	}
	p := Paginated[T]{Count: count, Results: results}
	if int64(page.Offset()+page.Size) < count {
		p.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		p.Previous = pageURL(c, page.Number-1)
	}
	return p
}

func pageURL(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	query := c.Request.URL.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	s := u.String()
	return &s
}
