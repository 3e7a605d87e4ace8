// Package filters compiles untyped list-request query parameters into the
// predicate, sort and pagination documents handed to the bounty store.
//
// Every builder here is total: malformed input degrades to a default or an
// empty fragment, never to an error.
package filters

// Doc is a predicate fragment. Nested fragments are Docs as well.
type Doc map[string]any

// Keys and operator tokens understood by the store. The store maps them to
// its own query language at the boundary.
const (
	KeyMatch      = "match"
	KeySort       = "sort"
	KeyTextSearch = "textSearch"

	FieldStatus       = "status"
	FieldCustomerID   = "customerId"
	FieldRewardAmount = "reward.amount"
	FieldPaidStatus   = "paidStatus"
	FieldCreatedBy    = "createdBy.discordId"
	FieldClaimedBy    = "claimedBy.discordId"
	FieldCreatedAt    = "createdAt"
	FieldDueAt        = "dueAt"
	FieldClaimedAt    = "claimedAt"
	FieldSeason       = "season"

	OpIn     = "in"
	OpGte    = "gte"
	OpLte    = "lte"
	OpSearch = "search"
	OpOr     = "or"
	OpExists = "exists"
)

// Match returns the clause nested under KeyMatch, or nil.
func (d Doc) Match() Doc {
	m, _ := d[KeyMatch].(Doc)
	return m
}

func (d Doc) clone() Doc {
	out := make(Doc, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}
