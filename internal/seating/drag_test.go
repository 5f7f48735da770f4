package seating

import (
	"reflect"
	"testing"
)

type recordingHooks struct {
	attached []Input
	detached []Input
}

func (r *recordingHooks) Attach(in Input) { r.attached = append(r.attached, in) }
func (r *recordingHooks) Detach(in Input) { r.detached = append(r.detached, in) }

func TestGapIndexAngles(t *testing.T) {
	c := Point{X: 100, Y: 100}
	cases := []struct {
		p     Point
		total int
		want  int
	}{
		{Point{100, 0}, 4, 0},   // top
		{Point{200, 100}, 4, 1}, // right
		{Point{100, 200}, 4, 2}, // bottom
		{Point{0, 100}, 4, 3},   // left
		{Point{99, 0}, 4, 0},    // just left of top wraps to gap 0
		{Point{100, 0}, 1, 0},
	}
	for _, tc := range cases {
		if got := GapIndex(tc.p, c, tc.total); got != tc.want {
			t.Fatalf("GapIndex(%+v, %d) = %d, want %d", tc.p, tc.total, got, tc.want)
		}
	}
}

func TestGapIndexTieRoundsUp(t *testing.T) {
	c := Point{}
	// exactly halfway between gap 0 (top) and gap 1 (right) with 4 seats
	p := Point{X: 1, Y: -1}
	if got := GapIndex(p, c, 4); got != 1 {
		t.Fatalf("tie resolved to %d, want 1", got)
	}
}

func TestReorderSplice(t *testing.T) {
	base := []int{10, 20, 30, 40, 50}
	cases := []struct {
		from, gap int
		want      []int
	}{
		{0, 3, []int{20, 30, 10, 40, 50}},
		{4, 1, []int{10, 50, 20, 30, 40}},
		{2, 2, []int{10, 20, 30, 40, 50}},
		{1, 2, []int{10, 20, 30, 40, 50}},
		{4, 0, []int{50, 10, 20, 30, 40}},
		{0, 5, []int{20, 30, 40, 50, 10}},
	}
	for _, tc := range cases {
		got := Reorder(base, tc.from, tc.gap)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Reorder(%d -> %d) = %v, want %v", tc.from, tc.gap, got, tc.want)
		}
	}
	if !reflect.DeepEqual(base, []int{10, 20, 30, 40, 50}) {
		t.Fatalf("input mutated: %v", base)
	}
}

func TestReorderIsPermutation(t *testing.T) {
	base := []int{1, 2, 3, 4, 5, 6, 7}
	for from := range base {
		for gap := 0; gap < len(base); gap++ {
			got := Reorder(base, from, gap)
			if len(got) != len(base) {
				t.Fatalf("length changed: %v", got)
			}
			seen := map[int]int{}
			for _, v := range got {
				seen[v]++
			}
			for _, v := range base {
				if seen[v] != 1 {
					t.Fatalf("Reorder(%d, %d) lost or duplicated %d: %v", from, gap, v, got)
				}
			}
			idx := -1
			for i, v := range got {
				if v == base[from] {
					idx = i
				}
			}
			if gap != from && idx != gap && idx != gap-1 {
				t.Fatalf("Reorder(%d, %d) placed element at %d", from, gap, idx)
			}
		}
	}
}

func TestControllerLifecycle(t *testing.T) {
	hooks := &recordingHooks{}
	c := NewController(hooks)
	if !c.Begin(7, Point{1, 1}, InputTouch) {
		t.Fatal("Begin refused from idle")
	}
	if c.Begin(8, Point{}, InputMouse) {
		t.Fatal("second drag accepted while dragging")
	}
	if c.BeginEdit() {
		t.Fatal("edit accepted while dragging")
	}
	c.Move(Point{200, 100}, Point{100, 100}, 4)
	drop, ok := c.End()
	if !ok || drop.PlayerID != 7 || drop.Gap != 1 {
		t.Fatalf("End = %+v %v", drop, ok)
	}
	if c.State() != Idle {
		t.Fatalf("state after End = %v", c.State())
	}
	if len(hooks.attached) != 1 || len(hooks.detached) != 1 || hooks.detached[0] != InputTouch {
		t.Fatalf("hooks attach=%v detach=%v", hooks.attached, hooks.detached)
	}
}

func TestControllerEndWithoutGap(t *testing.T) {
	hooks := &recordingHooks{}
	c := NewController(hooks)
	c.Begin(1, Point{}, InputMouse)
	if _, ok := c.End(); ok {
		t.Fatal("drop reported without any move")
	}
	if len(hooks.detached) != 1 {
		t.Fatalf("listeners not released: %v", hooks.detached)
	}
	if _, ok := c.End(); ok {
		t.Fatal("End from idle reported a drop")
	}
	if len(hooks.detached) != 1 {
		t.Fatal("Detach called twice")
	}
}

func TestControllerEditBlocksDrag(t *testing.T) {
	c := NewController(nil)
	if !c.BeginEdit() {
		t.Fatal("edit refused from idle")
	}
	if c.Begin(1, Point{}, InputMouse) {
		t.Fatal("drag accepted while editing")
	}
	c.EndEdit()
	if !c.Begin(1, Point{}, InputMouse) {
		t.Fatal("drag refused after edit ended")
	}
	c.Cancel()
	if c.Dragging() {
		t.Fatal("still dragging after Cancel")
	}
}
