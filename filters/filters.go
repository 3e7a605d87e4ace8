package filters

import (
	"reflect"

	"bounty-board/models"
)

// DefaultVisibleStatuses are shown on public listings when no status is asked for.
var DefaultVisibleStatuses = []string{
	string(models.BountyStatusOpen),
	string(models.BountyStatusInProgress),
	string(models.BountyStatusInReview),
	string(models.BountyStatusCompleted),
}

// FilterRange adds a numeric range on field by. The lower bound defaults to
// 0, since rewards cannot be negative; supplied bounds are used as-is, with
// no reordering or clamping.
func FilterRange(by string, query Doc, lte, gte *float64) Doc {
	out := query.clone()
	bounds := Doc{OpGte: float64(0)}
	if gte != nil {
		bounds[OpGte] = *gte
	}
	if lte != nil {
		bounds[OpLte] = *lte
	}
	out[by] = bounds
	return out
}

// FilterStatus adds status set membership. An empty input selects the
// publicly visible statuses; any other input is used verbatim.
func FilterStatus(query Doc, status []string) Doc {
	out := query.clone()
	if len(status) == 0 {
		out[FieldStatus] = Doc{OpIn: append([]string(nil), DefaultVisibleStatuses...)}
		return out
	}
	out[FieldStatus] = Doc{OpIn: status}
	return out
}

// FilterSearch adds a free-text search when text is non-empty.
func FilterSearch(query Doc, text string) Doc {
	if text == "" {
		return query
	}
	out := query.clone()
	out[KeyTextSearch] = Doc{OpSearch: text}
	return out
}

// FilterPaidStatus matches the requested paid status, or both recognized
// values when none is requested, OR records with no paid status at all.
// Records created before paid status existed must stay visible.
func FilterPaidStatus(paidStatus string) Doc {
	values := []string{paidStatus}
	if paidStatus == "" {
		values = make([]string, 0, len(models.AllPaidStatuses))
		for _, ps := range models.AllPaidStatuses {
			values = append(values, string(ps))
		}
	}
	return Doc{
		OpOr: []Doc{
			{FieldPaidStatus: Doc{OpIn: values}},
			{FieldPaidStatus: Doc{OpExists: false}},
		},
	}
}

// Prune removes nil and empty-string values at every depth. Zero numbers and
// false are kept. Pruning a pruned document returns an equal document.
func Prune(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		if isEmpty(v) {
			continue
		}
		switch nested := v.(type) {
		case Doc:
			out[k] = Prune(nested)
		case []Doc:
			items := make([]Doc, 0, len(nested))
			for _, item := range nested {
				items = append(items, Prune(item))
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Compose builds the full predicate document for a list request.
func Compose(q Query) Doc {
	match := Doc{}

	var status []string
	if q.Status != "" {
		status = []string{q.Status}
	}
	merge(match, FilterStatus(Doc{}, status))

	merge(match, Doc{
		FieldCustomerID: q.CustomerID,
		FieldCreatedBy:  q.CreatedBy,
		FieldClaimedBy:  q.ClaimedBy,
	})
	merge(match, FilterSearch(Doc{}, q.Search))
	merge(match, FilterRange(FieldRewardAmount, Doc{}, q.Lte, q.Gte))
	merge(match, FilterPaidStatus(q.PaidStatus))

	return Doc{KeyMatch: match}
}

func merge(dst, fragment Doc) {
	for k, v := range Prune(fragment) {
		dst[k] = v
	}
}
