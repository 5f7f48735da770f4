package engine

import (
	"testing"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

func TestRecommended(t *testing.T) {
	cases := map[int]Distribution{
		5:  {3, 0, 1, 1},
		7:  {5, 0, 1, 1},
		10: {7, 0, 2, 1},
		12: {7, 2, 2, 1},
		14: {9, 1, 3, 1},
		15: {9, 2, 3, 1},
		20: {9, 2, 3, 1},
	}
	for n, want := range cases {
		got, ok := Recommended(n)
		if !ok || got != want {
			t.Fatalf("Recommended(%d) = %+v, %v; want %+v", n, got, ok, want)
		}
	}
	for n := 5; n <= 15; n++ {
		d, _ := Recommended(n)
		if d.Total() != n {
			t.Fatalf("Recommended(%d) deals %d roles", n, d.Total())
		}
	}
	if _, ok := Recommended(4); ok {
		t.Fatalf("expected no recommendation under five players")
	}
}

func TestParseCount(t *testing.T) {
	for in, want := range map[string]int{"3": 3, " 4 ": 4, "abc": 0, "": 0, "-2": 0, "1.5": 0} {
		if got := ParseCount(in); got != want {
			t.Fatalf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestWithCount(t *testing.T) {
	var d Distribution
	d = d.WithCount(script.TeamMinion, 2).WithCount(script.TeamDemon, -1)
	if d.Count(script.TeamMinion) != 2 || d.Count(script.TeamDemon) != 0 {
		t.Fatalf("unexpected distribution %+v", d)
	}
}
