package clip

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/uirender"
)

// IntRect is an integer pixel rectangle used by Region.
// Empty when Left >= Right or Top >= Bottom.
type IntRect struct {
	Left, Top, Right, Bottom int
}

// IsEmpty reports whether the rectangle encloses no pixels.
func (r IntRect) IsEmpty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Rect converts to a float rectangle.
func (r IntRect) Rect() uirender.Rect {
	return uirender.MakeRect(float64(r.Left), float64(r.Top), float64(r.Right), float64(r.Bottom))
}

// RoundRect converts a float rectangle to the nearest integer pixel rect.
func RoundRect(r uirender.Rect) IntRect {
	return IntRect{
		Left:   int(math.Round(r.Left)),
		Top:    int(math.Round(r.Top)),
		Right:  int(math.Round(r.Right)),
		Bottom: int(math.Round(r.Bottom)),
	}
}

// Region is a set of device pixels represented as non-overlapping
// rectangles in band (y-sorted) form. It is the final stop of the clip
// escalation ladder: arbitrary coverage, exact to the pixel.
//
// The zero value is an empty region.
type Region struct {
	// rects are disjoint, sorted by (Top, Left). Rectangles sharing a
	// horizontal band have identical Top/Bottom.
	rects []IntRect
}

// NewRegionFromRect creates a region covering a single rectangle.
func NewRegionFromRect(r IntRect) *Region {
	if r.IsEmpty() {
		return &Region{}
	}
	return &Region{rects: []IntRect{r}}
}

// IsEmpty reports whether the region covers no pixels.
func (rg *Region) IsEmpty() bool {
	return rg == nil || len(rg.rects) == 0
}

// IsRect reports whether the region is exactly one rectangle.
func (rg *Region) IsRect() bool {
	return rg != nil && len(rg.rects) == 1
}

// Rects returns the region's rectangle decomposition.
// The returned slice is owned by the region and must not be modified.
func (rg *Region) Rects() []IntRect {
	if rg == nil {
		return nil
	}
	return rg.rects
}

// Bounds returns the bounding box of the region.
func (rg *Region) Bounds() IntRect {
	if rg.IsEmpty() {
		return IntRect{}
	}
	b := rg.rects[0]
	for _, r := range rg.rects[1:] {
		if r.Left < b.Left {
			b.Left = r.Left
		}
		if r.Right > b.Right {
			b.Right = r.Right
		}
		if r.Bottom > b.Bottom {
			b.Bottom = r.Bottom
		}
	}
	return b
}

// Intersect returns the intersection of two regions.
func (rg *Region) Intersect(o *Region) *Region {
	return combine(rg, o, func(a, b bool) bool { return a && b })
}

// Union returns the union of two regions.
func (rg *Region) Union(o *Region) *Region {
	return combine(rg, o, func(a, b bool) bool { return a || b })
}

// span is a half-open horizontal interval.
type span struct {
	left, right int
}

// combine merges two regions with a per-pixel boolean, using a classic
// band sweep: split the y axis at every band edge of either operand,
// merge x intervals within each strip, then coalesce identical adjacent
// strips back into tall bands.
func combine(a, b *Region, keep func(inA, inB bool) bool) *Region {
	var aRects, bRects []IntRect
	if a != nil {
		aRects = a.rects
	}
	if b != nil {
		bRects = b.rects
	}
	ys := make([]int, 0, 2*(len(aRects)+len(bRects)))
	for _, r := range aRects {
		ys = append(ys, r.Top, r.Bottom)
	}
	for _, r := range bRects {
		ys = append(ys, r.Top, r.Bottom)
	}
	ys = sortedUnique(ys)

	out := &Region{}
	for i := 0; i+1 < len(ys); i++ {
		top, bottom := ys[i], ys[i+1]
		spans := mergeSpans(stripSpans(aRects, top), stripSpans(bRects, top), keep)
		for _, s := range spans {
			out.appendBand(IntRect{Left: s.left, Top: top, Right: s.right, Bottom: bottom})
		}
	}
	return out
}

// stripSpans collects the x intervals of rects whose band contains row y.
// Rects within a band are already left-sorted and disjoint.
func stripSpans(rects []IntRect, y int) []span {
	var spans []span
	for _, r := range rects {
		if r.Top <= y && y < r.Bottom {
			spans = append(spans, span{left: r.Left, right: r.Right})
		}
	}
	return spans
}

// mergeSpans combines two disjoint sorted span lists with a boolean
// predicate, producing a disjoint sorted result.
func mergeSpans(a, b []span, keep func(inA, inB bool) bool) []span {
	xs := make([]int, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		xs = append(xs, s.left, s.right)
	}
	for _, s := range b {
		xs = append(xs, s.left, s.right)
	}
	xs = sortedUnique(xs)

	var out []span
	for i := 0; i+1 < len(xs); i++ {
		left, right := xs[i], xs[i+1]
		if keep(spansContain(a, left), spansContain(b, left)) {
			if n := len(out); n > 0 && out[n-1].right == left {
				out[n-1].right = right
			} else {
				out = append(out, span{left: left, right: right})
			}
		}
	}
	return out
}

func spansContain(spans []span, x int) bool {
	for _, s := range spans {
		if s.left <= x && x < s.right {
			return true
		}
	}
	return false
}

// appendBand adds a rect, coalescing with the previous band when the two
// form a taller rectangle (same x extent, touching vertically, and the
// upper band contains only that one rect at this x extent).
func (rg *Region) appendBand(r IntRect) {
	if r.IsEmpty() {
		return
	}
	if n := len(rg.rects); n > 0 {
		prev := &rg.rects[n-1]
		if prev.Left == r.Left && prev.Right == r.Right && prev.Bottom == r.Top &&
			!bandHasSiblings(rg.rects, n-1) {
			prev.Bottom = r.Bottom
			return
		}
	}
	rg.rects = append(rg.rects, r)
}

// bandHasSiblings reports whether the rect at index i shares its band with
// another rect, which would make vertical coalescing change coverage.
func bandHasSiblings(rects []IntRect, i int) bool {
	if i > 0 && rects[i-1].Top == rects[i].Top {
		return true
	}
	if i+1 < len(rects) && rects[i+1].Top == rects[i].Top {
		return true
	}
	return false
}

func sortedUnique(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	// insertion sort: operand lists are small (clip shapes, not scenes)
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// coverageThreshold is the rasterizer coverage at which a pixel counts as
// inside the clip. Half coverage matches non-anti-aliased fill semantics.
const coverageThreshold = 128

// NewRegionFromPath scan-converts a device-space path into a region,
// masked to the given clip. Pixels with at least half coverage are
// included; the result is therefore never a superset of the path's true
// coverage by more than half a pixel on any edge.
func NewRegionFromPath(path *uirender.Path, mask *Region) *Region {
	if path.IsEmpty() || mask.IsEmpty() {
		return &Region{}
	}
	bounds := mask.Bounds()
	w, h := bounds.Right-bounds.Left, bounds.Bottom-bounds.Top
	if w <= 0 || h <= 0 {
		return &Region{}
	}

	z := vector.NewRasterizer(w, h)
	off := uirender.Pt(float64(-bounds.Left), float64(-bounds.Top))
	for _, e := range path.Elements() {
		switch el := e.(type) {
		case uirender.MoveTo:
			p := el.Point.Add(off)
			z.MoveTo(float32(p.X), float32(p.Y))
		case uirender.LineTo:
			p := el.Point.Add(off)
			z.LineTo(float32(p.X), float32(p.Y))
		case uirender.QuadTo:
			c := el.Control.Add(off)
			p := el.Point.Add(off)
			z.QuadTo(float32(c.X), float32(c.Y), float32(p.X), float32(p.Y))
		case uirender.CubicTo:
			c1 := el.Control1.Add(off)
			c2 := el.Control2.Add(off)
			p := el.Point.Add(off)
			z.CubeTo(float32(c1.X), float32(c1.Y), float32(c2.X), float32(c2.Y),
				float32(p.X), float32(p.Y))
		case uirender.Close:
			z.ClosePath()
		}
	}
	z.ClosePath()

	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})

	out := &Region{}
	for y := 0; y < h; y++ {
		row := cov.Pix[y*cov.Stride : y*cov.Stride+w]
		runStart := -1
		for x := 0; x <= w; x++ {
			inside := x < w && row[x] >= coverageThreshold
			if inside && runStart < 0 {
				runStart = x
			} else if !inside && runStart >= 0 {
				out.appendBand(IntRect{
					Left:   bounds.Left + runStart,
					Top:    bounds.Top + y,
					Right:  bounds.Left + x,
					Bottom: bounds.Top + y + 1,
				})
				runStart = -1
			}
		}
	}
	return out.Intersect(mask)
}
