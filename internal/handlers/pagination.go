package handlers

import (
	"net/http"
	"strconv"
)

const defaultPageLimit = 10

// page is the list envelope every collection endpoint returns.
type page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parsePage reads limit/offset query params with defaults.
func parsePage(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	offset = 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}
	return limit, offset
}

// newPage builds the envelope. Next/Previous are relative URLs preserving the
// request's other query params, or null at the edges.
func newPage(r *http.Request, count, limit, offset int, results interface{}) page {
	p := page{Count: count, Results: results}

	if offset+limit < count {
		p.Next = pageURL(r, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		p.Previous = pageURL(r, limit, prev)
	}
	return p
}

func pageURL(r *http.Request, limit, offset int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
