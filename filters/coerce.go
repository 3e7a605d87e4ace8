package filters

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query holds the recognized list parameters after coercion.
// Empty strings and nil bounds mean "not supplied".
type Query struct {
	Status     string
	Search     string
	Lte        *float64
	Gte        *float64
	CustomerID string
	CreatedBy  string
	ClaimedBy  string
	PaidStatus string
	SortBy     string
	Asc        string
	Next       string
	Previous   string
	Limit      string
}

// recognized is the closed set of keys Coerce looks at.
var recognized = []string{
	"status", "search", "lte", "gte", "customerId", "createdBy", "claimedBy",
	"paidStatus", "sortBy", "asc", "next", "previous", "limit",
}

// Coerce normalizes raw query parameters.
//
// A key that arrives more than once is treated as an array and dropped: set
// semantics only exist on the status path, and only for callers that build a
// status slice themselves. lte and gte are parsed as numbers and dropped when
// they do not parse. Unrecognized keys are ignored.
func Coerce(raw url.Values) Query {
	var q Query
	for _, key := range recognized {
		values, ok := raw[key]
		if !ok || len(values) != 1 {
			continue
		}
		v := values[0]
		switch key {
		case "lte":
			q.Lte = toNumber(v)
		case "gte":
			q.Gte = toNumber(v)
		case "status":
			q.Status = v
		case "search":
			q.Search = v
		case "customerId":
			q.CustomerID = v
		case "createdBy":
			q.CreatedBy = v
		case "claimedBy":
			q.ClaimedBy = v
		case "paidStatus":
			q.PaidStatus = v
		case "sortBy":
			q.SortBy = v
		case "asc":
			q.Asc = v
		case "next":
			q.Next = v
		case "previous":
			q.Previous = v
		case "limit":
			q.Limit = v
		}
	}
	return q
}

func toNumber(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
