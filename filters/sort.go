package filters

// Ascending and Descending are the sort directions in a sort directive.
const (
	Ascending  = 1
	Descending = -1
)

// DefaultSortField is used when sortBy is missing or unknown.
const DefaultSortField = FieldCreatedAt

var sortFields = map[string]string{
	"reward":    FieldRewardAmount,
	"createdAt": FieldCreatedAt,
	"dueAt":     FieldDueAt,
	"claimedAt": FieldClaimedAt,
	"season":    FieldSeason,
}

var truthyAsc = map[string]bool{
	"true": true,
	"1":    true,
	"asc":  true,
}

// Sort is a single-field ordering.
type Sort struct {
	Field string
	Order int
}

// CompileSort maps sortBy/asc to a concrete field ordering.
// asc is compared case-sensitively; anything not truthy sorts descending.
func CompileSort(q Query) Sort {
	field, ok := sortFields[q.SortBy]
	if !ok {
		field = DefaultSortField
	}
	order := Descending
	if truthyAsc[q.Asc] {
		order = Ascending
	}
	return Sort{Field: field, Order: order}
}

// Doc renders the directive as {sort: {field: ±1}}.
func (s Sort) Doc() Doc {
	return Doc{KeySort: Doc{s.Field: s.Order}}
}
