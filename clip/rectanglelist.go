package clip

import "github.com/gogpu/uirender"

// maxTransformedRectangles bounds the rectangle-list representation.
// Exceeding it escalates the clip to region mode.
const maxTransformedRectangles = 5

// TransformedRectangle is a rectangle paired with the transform that was
// active when it was intersected into the clip.
type TransformedRectangle struct {
	Bounds    uirender.Rect
	Transform uirender.Matrix
}

// CanSimplyIntersectWith reports whether the two rectangles can be merged
// into one by intersecting their bounds, which requires their transforms
// to be exactly equal. Equality is exact component comparison, not
// epsilon-based: record-time transforms on both sides of the comparison
// are produced by identical arithmetic, and an approximate match would
// silently merge clips that differ by a real sub-pixel transform.
func (t TransformedRectangle) CanSimplyIntersectWith(o TransformedRectangle) bool {
	return t.Transform == o.Transform
}

// IntersectWith narrows the rectangle's bounds by another rectangle with a
// compatible transform.
func (t *TransformedRectangle) IntersectWith(o TransformedRectangle) {
	t.Bounds = t.Bounds.Intersect(o.Bounds)
}

// IsEmpty reports whether the rectangle clips everything out.
func (t TransformedRectangle) IsEmpty() bool {
	return t.Bounds.IsEmpty()
}

// TransformedBounds returns the device-space bounding box of the
// rectangle under its transform.
func (t TransformedRectangle) TransformedBounds() uirender.Rect {
	return t.Transform.MapRect(t.Bounds)
}

// RectangleList is the middle rung of the clip escalation ladder: a small
// bounded set of transformed rectangles whose intersection is the clip.
type RectangleList struct {
	count int
	rects [maxTransformedRectangles]TransformedRectangle
}

// IsEmpty reports whether the list clips everything out.
func (l RectangleList) IsEmpty() bool {
	if l.count < 1 {
		return true
	}
	for i := 0; i < l.count; i++ {
		if l.rects[i].IsEmpty() {
			return true
		}
	}
	return false
}

// Count returns the number of transformed rectangles.
func (l RectangleList) Count() int {
	return l.count
}

// At returns the i-th transformed rectangle.
func (l RectangleList) At(i int) TransformedRectangle {
	return l.rects[i]
}

// SetEmpty discards all rectangles.
func (l *RectangleList) SetEmpty() {
	l.count = 0
}

// Set resets the list to a single transformed rectangle.
func (l *RectangleList) Set(bounds uirender.Rect, transform uirender.Matrix) {
	l.count = 1
	l.rects[0] = TransformedRectangle{Bounds: bounds, Transform: transform}
}

// IntersectWith narrows the list by another transformed rectangle.
// Returns false when the rectangle has an incompatible transform and the
// list is full, which means the caller must escalate to region mode.
func (l *RectangleList) IntersectWith(bounds uirender.Rect, transform uirender.Matrix) bool {
	newRect := TransformedRectangle{Bounds: bounds, Transform: transform}

	// Try to find a rectangle with a compatible transformation
	for i := 0; i < l.count; i++ {
		if l.rects[i].CanSimplyIntersectWith(newRect) {
			l.rects[i].IntersectWith(newRect)
			return true
		}
	}

	if l.count < maxTransformedRectangles {
		l.rects[l.count] = newRect
		l.count++
		return true
	}

	return false
}

// CalculateBounds returns the intersection of every rectangle's
// device-space bounding box: a conservative bound on the clip.
func (l *RectangleList) CalculateBounds() uirender.Rect {
	var bounds uirender.Rect
	for i := 0; i < l.count; i++ {
		tb := l.rects[i].TransformedBounds()
		if i == 0 {
			bounds = tb
		} else {
			bounds = bounds.Intersect(tb)
		}
	}
	return bounds
}

// ConvertToRegion rasterizes the intersection of all transformed
// rectangles, masked to the given clip region.
func (l *RectangleList) ConvertToRegion(mask *Region) *Region {
	out := mask
	for i := 0; i < l.count; i++ {
		tr := l.rects[i]
		path := uirender.NewPath()
		path.AddRect(tr.Bounds)
		out = NewRegionFromPath(path.Transform(tr.Transform), out)
	}
	return out
}
