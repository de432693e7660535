package uirender

import "testing"

func TestRectIsEmpty(t *testing.T) {
	cases := []struct {
		r    Rect
		want bool
	}{
		{Rect{}, true},
		{MakeRect(0, 0, 10, 10), false},
		{MakeRect(10, 0, 10, 10), true},
		{MakeRect(20, 0, 10, 10), true},
		{MakeRect(0, 5, 10, 5), true},
	}
	for _, c := range cases {
		if got := c.r.IsEmpty(); got != c.want {
			t.Errorf("IsEmpty(%+v) = %v, want %v", c.r, got, c.want)
		}
	}
}

func TestRectIntersect(t *testing.T) {
	a := MakeRect(0, 0, 100, 100)
	b := MakeRect(50, 60, 150, 160)
	got := a.Intersect(b)
	if want := MakeRect(50, 60, 100, 100); got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	if got := a.Intersect(MakeRect(200, 200, 300, 300)); !got.IsEmpty() {
		t.Errorf("disjoint Intersect = %+v, want empty", got)
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	a := MakeRect(10, 10, 20, 20)
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %+v, want %+v", got, a)
	}
	if got := (Rect{}).Union(a); got != a {
		t.Errorf("empty Union = %+v, want %+v", got, a)
	}
	got := a.Union(MakeRect(0, 15, 15, 30))
	if want := MakeRect(0, 10, 20, 30); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestRectOutsetRoundOut(t *testing.T) {
	got := MakeRect(10, 10, 20, 20).Outset(2.5)
	if want := MakeRect(7.5, 7.5, 22.5, 22.5); got != want {
		t.Errorf("Outset = %+v, want %+v", got, want)
	}
	if got, want := got.RoundOut(), MakeRect(7, 7, 23, 23); got != want {
		t.Errorf("RoundOut = %+v, want %+v", got, want)
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := MakeRect(0, 0, 100, 100)
	if !outer.ContainsRect(MakeRect(10, 10, 90, 90)) {
		t.Error("inner rect not contained")
	}
	if outer.ContainsRect(MakeRect(10, 10, 110, 90)) {
		t.Error("overhanging rect reported contained")
	}
}
