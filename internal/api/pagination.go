package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pagination is the page-number window requested through ?page= and ?limit=.
type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePagination(c *gin.Context, defaultLimit int) pagination {
	p := pagination{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = min(v, maxPageSize)
	}
	return p
}

// lastPage is never below one so that an empty first page is valid.
func (p pagination) lastPage(count int64) int {
	pages := int((count + int64(p.Limit) - 1) / int64(p.Limit))
	return max(pages, 1)
}

// respondPage writes the list envelope, or 404 for a page past the end.
func respondPage[T any](c *gin.Context, p pagination, count int64, results []T) {
	last := p.lastPage(count)
	if p.Page > last {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
		return
	}
	if results == nil {
		results = []T{}
	}

	page := types.Page[T]{Count: count, Results: results}
	if p.Page < last {
		page.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(c, p.Page-1)
	}
	c.JSON(http.StatusOK, page)
}

func pageURL(c *gin.Context, page int) *string {
	u := requestURL(c)
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}
