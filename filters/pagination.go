package filters

import (
	"strconv"
	"strings"
)

// MaxPageSize caps a page and is the default when limit is unusable.
const MaxPageSize = 1000

// Pagination carries opaque cursors minted from a previous page.
// Whether a cursor references a real record is the store's concern.
type Pagination struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Limit    int    `json:"limit"`
}

// CompilePagination passes cursors through and parses limit.
func CompilePagination(q Query) Pagination {
	return Pagination{
		Next:     q.Next,
		Previous: q.Previous,
		Limit:    parseLimit(q.Limit),
	}
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
