package filters

import (
	"net/url"
	"reflect"
	"testing"

	"bounty-board/models"
)

func TestFilterRange(t *testing.T) {
	t.Run("defaults to greater than or equal to zero", func(t *testing.T) {
		got := FilterRange(FieldRewardAmount, Doc{}, nil, nil)
		want := Doc{OpGte: float64(0)}
		if !reflect.DeepEqual(got[FieldRewardAmount], want) {
			t.Errorf("range = %v, want %v", got[FieldRewardAmount], want)
		}
	})

	t.Run("applies both bounds verbatim", func(t *testing.T) {
		got := FilterRange(FieldRewardAmount, Doc{}, ptr(100), ptr(100))
		want := Doc{OpGte: float64(100), OpLte: float64(100)}
		if !reflect.DeepEqual(got[FieldRewardAmount], want) {
			t.Errorf("range = %v, want %v", got[FieldRewardAmount], want)
		}
	})

	t.Run("does not reorder inverted bounds", func(t *testing.T) {
		got := FilterRange(FieldRewardAmount, Doc{}, ptr(5), ptr(50))
		want := Doc{OpGte: float64(50), OpLte: float64(5)}
		if !reflect.DeepEqual(got[FieldRewardAmount], want) {
			t.Errorf("range = %v, want %v", got[FieldRewardAmount], want)
		}
	})

	t.Run("leaves the input fragment untouched", func(t *testing.T) {
		in := Doc{"other": "x"}
		FilterRange(FieldRewardAmount, in, nil, nil)
		if len(in) != 1 {
			t.Errorf("input mutated: %v", in)
		}
	})
}

func TestFilterStatus(t *testing.T) {
	for _, status := range [][]string{nil, {}} {
		got := FilterStatus(Doc{}, status)
		in := got[FieldStatus].(Doc)[OpIn].([]string)
		if len(in) == 0 {
			t.Fatalf("expected default statuses for %v", status)
		}
		for _, s := range in {
			if s == string(models.BountyStatusDraft) || s == string(models.BountyStatusDeleted) {
				t.Errorf("default set must not contain %s", s)
			}
		}
	}

	want := []string{"This could be anything"}
	got := FilterStatus(Doc{}, want)
	if !reflect.DeepEqual(got[FieldStatus], Doc{OpIn: want}) {
		t.Errorf("status = %v, want %v", got[FieldStatus], want)
	}
}

func TestFilterSearch(t *testing.T) {
	search := "This could be anything"
	got := FilterSearch(Doc{}, search)
	if !reflect.DeepEqual(got[KeyTextSearch], Doc{OpSearch: search}) {
		t.Errorf("textSearch = %v", got[KeyTextSearch])
	}

	if got := FilterSearch(Doc{}, ""); len(got) != 0 {
		t.Errorf("empty search should be a no-op, got %v", got)
	}
}

func TestFilterPaidStatusAlwaysAdmitsLegacyRecords(t *testing.T) {
	for _, requested := range []string{"", "Paid", "Unpaid", "something else"} {
		or := FilterPaidStatus(requested)[OpOr].([]Doc)
		if len(or) != 2 {
			t.Fatalf("%q: expected two disjuncts, got %d", requested, len(or))
		}
		if !reflect.DeepEqual(or[1], Doc{FieldPaidStatus: Doc{OpExists: false}}) {
			t.Errorf("%q: missing exists:false disjunct, got %v", requested, or[1])
		}
	}

	or := FilterPaidStatus("Unpaid")[OpOr].([]Doc)
	if !reflect.DeepEqual(or[0], Doc{FieldPaidStatus: Doc{OpIn: []string{"Unpaid"}}}) {
		t.Errorf("explicit value not honored: %v", or[0])
	}
}

func TestPrune(t *testing.T) {
	var nilBound *float64
	in := Doc{"a": nil, "b": nilBound, "c": "", "d": 0, "e": false}
	want := Doc{"d": 0, "e": false}

	got := Prune(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Prune() = %v, want %v", got, want)
	}
	if again := Prune(got); !reflect.DeepEqual(again, got) {
		t.Errorf("Prune is not idempotent: %v", again)
	}

	nested := Prune(Doc{"x": Doc{"y": "", "z": 1}, "or": []Doc{{"k": nil, "v": "ok"}}})
	wantNested := Doc{"x": Doc{"z": 1}, "or": []Doc{{"v": "ok"}}}
	if !reflect.DeepEqual(nested, wantNested) {
		t.Errorf("nested Prune() = %v, want %v", nested, wantNested)
	}

	if got := Prune(Doc{"$search": nil, "reward.amount": nilBound, "status": ""}); len(got) != 0 {
		t.Errorf("expected blank document, got %v", got)
	}
}

func TestComposeWithoutPaidStatus(t *testing.T) {
	q := Coerce(url.Values{
		"status":     {"Open"},
		"search":     {"Test"},
		"customerId": {"testId"},
		"lte":        {"100"},
		"asc":        {"true"},
	})

	want := Doc{
		KeyMatch: Doc{
			FieldStatus:       Doc{OpIn: []string{"Open"}},
			FieldCustomerID:   "testId",
			KeyTextSearch:     Doc{OpSearch: "Test"},
			FieldRewardAmount: Doc{OpLte: float64(100), OpGte: float64(0)},
			OpOr: []Doc{
				{FieldPaidStatus: Doc{OpIn: []string{"Paid", "Unpaid"}}},
				{FieldPaidStatus: Doc{OpExists: false}},
			},
		},
	}

	if got := Compose(q); !reflect.DeepEqual(got, want) {
		t.Errorf("Compose() =\n%v\nwant\n%v", got, want)
	}
}

func TestComposeWithPaidStatus(t *testing.T) {
	q := Coerce(url.Values{
		"status":     {"Open"},
		"customerId": {"testId"},
		"paidStatus": {"Unpaid"},
	})

	or := Compose(q).Match()[OpOr].([]Doc)
	want := []Doc{
		{FieldPaidStatus: Doc{OpIn: []string{"Unpaid"}}},
		{FieldPaidStatus: Doc{OpExists: false}},
	}
	if !reflect.DeepEqual(or, want) {
		t.Errorf("or = %v, want %v", or, want)
	}
}

func TestComposeArrayStatusFallsBackToDefaultSet(t *testing.T) {
	q := Coerce(url.Values{"status": {"Draft", "Deleted"}})
	status := Compose(q).Match()[FieldStatus]
	if !reflect.DeepEqual(status, Doc{OpIn: DefaultVisibleStatuses}) {
		t.Errorf("status = %v, want default set", status)
	}
}

func TestComposeActorFilters(t *testing.T) {
	q := Coerce(url.Values{"createdBy": {"1111"}, "claimedBy": {"2222"}})
	match := Compose(q).Match()
	if match[FieldCreatedBy] != "1111" || match[FieldClaimedBy] != "2222" {
		t.Errorf("actor filters missing: %v", match)
	}
	if _, ok := match[FieldCustomerID]; ok {
		t.Errorf("absent customerId must be pruned: %v", match)
	}
}
