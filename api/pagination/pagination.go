// Package pagination binds the limit/offset query parameters shared by
// the listing endpoints.
package pagination

// Query is the paging window requested by a client. Limit is clamped per
// endpoint before use.
type Query struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Clamp normalizes the window: a missing or non-positive limit falls back
// to def, a limit above max is cut to max, and a negative offset becomes
// zero.
func (q *Query) Clamp(def, max int) {
	if q.Limit <= 0 {
		q.Limit = def
	}
	if q.Limit > max {
		q.Limit = max
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// Result is the paged response wrapper for listing endpoints. Total is
// the number of matches seen before the window was applied.
type Result struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
}
