package transform

import (
	"reflect"
	"testing"
)

func TestDedupeLatest(t *testing.T) {
	type row struct {
		key  string
		rank int
	}

	rows := []row{
		{"a", 1},
		{"b", 5},
		{"a", 3},
		{"c", 2},
		{"a", 2},
	}

	got := dedupeLatest(rows,
		func(r row) string { return r.key },
		func(x, y row) bool { return x.rank > y.rank })

	want := []row{{"a", 3}, {"b", 5}, {"c", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDedupeLatestStableTieBreak(t *testing.T) {
	type row struct {
		key  string
		tag  string
		rank int
	}

	// Equal ranks: the first-appended row of the group must survive.
	rows := []row{
		{"a", "first", 1},
		{"a", "second", 1},
	}

	got := dedupeLatest(rows,
		func(r row) string { return r.key },
		func(x, y row) bool { return x.rank > y.rank })

	if len(got) != 1 || got[0].tag != "first" {
		t.Errorf("got %v, want the first-seen row to win ties", got)
	}
}

func TestDedupeLatestEmpty(t *testing.T) {
	got := dedupeLatest(nil,
		func(s string) string { return s },
		func(a, b string) bool { return a > b })
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
