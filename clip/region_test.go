package clip

import (
	"testing"

	"github.com/gogpu/uirender"
)

func TestRegionIntersect(t *testing.T) {
	a := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	b := NewRegionFromRect(IntRect{Left: 50, Top: 50, Right: 150, Bottom: 150})
	got := a.Intersect(b)

	if !got.IsRect() {
		t.Fatalf("intersection of two rects has %d rects, want 1", len(got.Rects()))
	}
	want := IntRect{Left: 50, Top: 50, Right: 100, Bottom: 100}
	if got.Bounds() != want {
		t.Errorf("bounds = %+v, want %+v", got.Bounds(), want)
	}
}

func TestRegionIntersectDisjoint(t *testing.T) {
	a := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 10, Bottom: 10})
	b := NewRegionFromRect(IntRect{Left: 20, Top: 20, Right: 30, Bottom: 30})
	if got := a.Intersect(b); !got.IsEmpty() {
		t.Errorf("disjoint intersection = %+v, want empty", got.Rects())
	}
}

func TestRegionUnionLShape(t *testing.T) {
	a := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 50, Bottom: 100})
	b := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 100, Bottom: 50})
	got := a.Union(b)

	if got.IsRect() {
		t.Error("L-shaped union claims to be a single rect")
	}
	want := IntRect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	if got.Bounds() != want {
		t.Errorf("bounds = %+v, want %+v", got.Bounds(), want)
	}
	// band form: wide upper band, narrow lower band
	rects := got.Rects()
	if len(rects) != 2 {
		t.Fatalf("got %d rects, want 2", len(rects))
	}
	if rects[0] != (IntRect{Left: 0, Top: 0, Right: 100, Bottom: 50}) {
		t.Errorf("upper band = %+v", rects[0])
	}
	if rects[1] != (IntRect{Left: 0, Top: 50, Right: 50, Bottom: 100}) {
		t.Errorf("lower band = %+v", rects[1])
	}
}

func TestRegionUnionAdjacentCoalesces(t *testing.T) {
	a := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 100, Bottom: 50})
	b := NewRegionFromRect(IntRect{Left: 0, Top: 50, Right: 100, Bottom: 100})
	got := a.Union(b)

	if !got.IsRect() {
		t.Fatalf("vertically adjacent union has %d rects, want 1", len(got.Rects()))
	}
	want := IntRect{Left: 0, Top: 0, Right: 100, Bottom: 100}
	if got.Bounds() != want {
		t.Errorf("bounds = %+v, want %+v", got.Bounds(), want)
	}
}

func TestRegionUnionWithNil(t *testing.T) {
	var empty *Region
	b := NewRegionFromRect(IntRect{Left: 1, Top: 2, Right: 3, Bottom: 4})
	got := empty.Union(b)
	if got.IsEmpty() || got.Bounds() != b.Bounds() {
		t.Errorf("nil union = %+v, want %+v", got.Bounds(), b.Bounds())
	}
}

func TestNewRegionFromPathRect(t *testing.T) {
	path := uirender.NewPath()
	path.AddRect(uirender.MakeRect(10, 20, 40, 50))
	mask := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	got := NewRegionFromPath(path, mask)

	if !got.IsRect() {
		t.Fatalf("rasterized rect has %d rects, want 1", len(got.Rects()))
	}
	want := IntRect{Left: 10, Top: 20, Right: 40, Bottom: 50}
	if got.Bounds() != want {
		t.Errorf("bounds = %+v, want %+v", got.Bounds(), want)
	}
}

func TestNewRegionFromPathMasked(t *testing.T) {
	path := uirender.NewPath()
	path.AddRect(uirender.MakeRect(-50, -50, 500, 500))
	mask := NewRegionFromRect(IntRect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	got := NewRegionFromPath(path, mask)

	if got.Bounds() != mask.Bounds() {
		t.Errorf("bounds = %+v, want mask bounds %+v", got.Bounds(), mask.Bounds())
	}
}

func TestRoundRect(t *testing.T) {
	got := RoundRect(uirender.MakeRect(0.4, 0.6, 10.5, 19.4))
	want := IntRect{Left: 0, Top: 1, Right: 11, Bottom: 19}
	if got != want {
		t.Errorf("RoundRect = %+v, want %+v", got, want)
	}
}
