// Package clip implements the escalating clip representation used by the
// deferred rendering pipeline: a clip starts as a single rectangle,
// escalates to a bounded list of transformed rectangles when intersected
// under incompatible transforms, and finally escalates to a pixel region.
// Escalation is one-directional within a clip's lifetime; only an explicit
// replace resets it.
package clip

import "github.com/gogpu/uirender"

// Mode identifies the active clip representation.
type Mode uint8

const (
	// ModeRectangle is a single axis-aligned rectangle.
	ModeRectangle Mode = iota
	// ModeRectangleList is a bounded set of transformed rectangles.
	ModeRectangleList
	// ModeRegion is an arbitrary pixel region.
	ModeRegion
)

// modeNames maps Mode values to their string representation.
var modeNames = [...]string{
	ModeRectangle:     "Rectangle",
	ModeRectangleList: "RectangleList",
	ModeRegion:        "Region",
}

// String returns the string representation of a Mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Unknown"
}

// Op selects how a clip shape combines with the current clip.
type Op uint8

const (
	// OpIntersect narrows the clip to the overlap with the new shape.
	OpIntersect Op = iota
	// OpReplace resets the clip to the new shape, still bounded by the
	// viewport.
	OpReplace
)

// State is an immutable serialized clip snapshot: a tagged union of the
// three representations. Recorded ops and baked states hold *State;
// because Area memoizes serialization, pointer equality of two States is
// a valid fast test for "same clip", which the batcher depends on.
type State struct {
	// Mode tags which payload is valid.
	Mode Mode

	// Rect bounds the clip in device space, valid in every mode.
	// In ModeRectangle it is the exact clip.
	Rect uirender.Rect

	// RectList is the payload in ModeRectangleList.
	RectList RectangleList

	// Region is the payload in ModeRegion.
	Region *Region
}

// Intersects reports whether the given bounds may intersect the clip.
// Exact for rectangle mode, conservative (bounding box) otherwise.
func (s *State) Intersects(bounds uirender.Rect) bool {
	if s == nil {
		return true
	}
	return s.Rect.Intersects(bounds)
}
