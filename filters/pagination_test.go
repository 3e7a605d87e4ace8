package filters

import "testing"

func TestCompilePagination(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  Pagination
	}{
		{"parses limit", Query{Next: "123", Limit: "10"}, Pagination{Next: "123", Limit: 10}},
		{"non number defaults", Query{Next: "123", Limit: "fkekafk"}, Pagination{Next: "123", Limit: MaxPageSize}},
		{"missing defaults", Query{}, Pagination{Limit: MaxPageSize}},
		{"negative defaults", Query{Limit: "-5"}, Pagination{Limit: MaxPageSize}},
		{"caps large pages", Query{Limit: "50000"}, Pagination{Limit: MaxPageSize}},
		{"keeps previous cursor", Query{Previous: "abc", Limit: "2"}, Pagination{Previous: "abc", Limit: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompilePagination(tt.query); got != tt.want {
				t.Errorf("CompilePagination() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
