package clip

import "github.com/gogpu/uirender"

// Area is the mutable clip state carried by one canvas snapshot. It tracks
// which of the three representations is active and escalates as clip shapes
// with incompatible transforms are intersected in:
//
//	Rectangle -> RectangleList -> Region
//
// Escalation never reverses within a clip's lifetime, with two exceptions:
// an OpReplace resets the representation to the replacement shape, and a
// region that collapses to an exact rectangle re-enters rectangle mode.
//
// Area also owns serialization memoization: Serialize and
// SerializeIntersected return pointer-identical snapshots until the clip is
// next modified, so consumers can compare clips by pointer.
type Area struct {
	mode           Mode
	viewportBounds uirender.Rect
	clipRect       uirender.Rect
	clipRegion     *Region
	rectList       RectangleList

	// serialization memo, invalidated by every mutation
	lastSerialization *State
	lastResolution    *State
	lastResolvedClip  *State
	lastResolvedMat   uirender.Matrix
}

// NewArea creates a clip area covering the given viewport.
func NewArea(width, height int) *Area {
	a := &Area{mode: ModeRectangle}
	a.SetViewportDimensions(width, height)
	return a
}

// SetViewportDimensions resets the clip to cover a new viewport.
func (a *Area) SetViewportDimensions(width, height int) {
	a.onChanged()
	a.mode = ModeRectangle
	a.viewportBounds = uirender.MakeRect(0, 0, float64(width), float64(height))
	a.clipRect = a.viewportBounds
	a.clipRegion = nil
	a.rectList.SetEmpty()
}

// Copy returns an independent clip area with the same state. The
// serialization memo is shared structurally (snapshots are immutable) but
// invalidates independently.
func (a *Area) Copy() *Area {
	c := *a
	return &c
}

// IsEmpty reports whether the clip excludes every pixel.
func (a *Area) IsEmpty() bool {
	return a.clipRect.IsEmpty()
}

// SetEmpty resets the clip to exclude everything.
func (a *Area) SetEmpty() {
	a.onChanged()
	a.mode = ModeRectangle
	a.clipRect = uirender.Rect{}
	a.clipRegion = nil
	a.rectList.SetEmpty()
}

// SetClip resets the clip to exactly the given rectangle.
func (a *Area) SetClip(left, top, right, bottom float64) {
	a.onChanged()
	a.mode = ModeRectangle
	a.clipRect = uirender.MakeRect(left, top, right, bottom)
	a.clipRegion = nil
	a.rectList.SetEmpty()
}

// ClipRect returns the device-space bounding rectangle of the clip.
// In rectangle mode it is the exact clip.
func (a *Area) ClipRect() uirender.Rect { return a.clipRect }

// Mode returns the active representation.
func (a *Area) Mode() Mode { return a.mode }

// IsSimple reports whether the clip is a single rectangle.
func (a *Area) IsSimple() bool { return a.mode == ModeRectangle }

// IsRectangleList reports whether the clip is in rectangle-list mode.
func (a *Area) IsRectangleList() bool { return a.mode == ModeRectangleList }

// IsRegion reports whether the clip is in region mode.
func (a *Area) IsRegion() bool { return a.mode == ModeRegion }

// RectList returns a copy of the rectangle-list payload.
func (a *Area) RectList() RectangleList { return a.rectList }

// Region returns the region payload, nil outside region mode.
func (a *Area) Region() *Region { return a.clipRegion }

// ClipRectWithTransform narrows (or replaces) the clip with a rectangle
// under the given transform.
func (a *Area) ClipRectWithTransform(r uirender.Rect, transform uirender.Matrix, op Op) {
	a.onChanged()
	switch a.mode {
	case ModeRectangle:
		a.rectangleModeClipRect(r, transform, op)
	case ModeRectangleList:
		a.rectangleListModeClipRect(r, transform, op)
	case ModeRegion:
		a.regionModeClipRect(r, transform, op)
	}
}

// ClipPathWithTransform narrows (or replaces) the clip with an arbitrary
// path under the given transform. Paths always escalate to region mode.
func (a *Area) ClipPathWithTransform(path *uirender.Path, transform uirender.Matrix, op Op) {
	region := NewRegionFromPath(path.Transform(transform), a.viewportRegion())
	a.ClipRegion(region, op)
}

// ClipRegion narrows (or replaces) the clip with a device-space region.
func (a *Area) ClipRegion(region *Region, op Op) {
	a.onChanged()
	a.enterRegionMode()
	if op == OpReplace {
		a.clipRegion = region.Intersect(a.viewportRegion())
	} else {
		a.clipRegion = a.clipRegion.Intersect(region)
	}
	a.onClipRegionUpdated()
}

// --------------------------------------------------------------------------
// Rectangle mode
// --------------------------------------------------------------------------

func (a *Area) rectangleModeClipRect(r uirender.Rect, transform uirender.Matrix, op Op) {
	if op == OpReplace && transform.RectToRect() {
		// The viewport bound can never be exceeded, even by a replace.
		a.clipRect = transform.MapRect(r).Intersect(a.viewportBounds)
		return
	} else if op != OpIntersect {
		a.enterRegionMode()
		a.regionModeClipRect(r, transform, op)
		return
	}

	if transform.RectToRect() {
		a.clipRect = a.clipRect.Intersect(transform.MapRect(r))
		return
	}

	a.enterRectangleListMode()
	a.rectangleListModeClipRect(r, transform, op)
}

// --------------------------------------------------------------------------
// RectangleList mode
// --------------------------------------------------------------------------

func (a *Area) enterRectangleListMode() {
	// It is only legal to enter rectangle list mode from rectangle mode,
	// since rectangle list mode cannot represent every region clip.
	if a.mode != ModeRectangle {
		panic("clip: rectangle list mode entered from " + a.mode.String())
	}
	a.mode = ModeRectangleList
	a.rectList.Set(a.clipRect, uirender.Identity())
}

func (a *Area) rectangleListModeClipRect(r uirender.Rect, transform uirender.Matrix, op Op) {
	if op != OpIntersect || !a.rectList.IntersectWith(r, transform) {
		a.enterRegionMode()
		a.regionModeClipRect(r, transform, op)
		return
	}
	a.clipRect = a.rectList.CalculateBounds()
}

// --------------------------------------------------------------------------
// Region mode
// --------------------------------------------------------------------------

func (a *Area) enterRegionMode() {
	oldMode := a.mode
	if oldMode == ModeRegion {
		return
	}
	a.mode = ModeRegion
	if oldMode == ModeRectangle {
		a.clipRegion = NewRegionFromRect(RoundRect(a.clipRect))
	} else {
		a.clipRegion = a.rectList.ConvertToRegion(a.viewportRegion())
		a.onClipRegionUpdated()
	}
}

func (a *Area) regionModeClipRect(r uirender.Rect, transform uirender.Matrix, op Op) {
	path := uirender.NewPath()
	path.AddRect(r)
	rectRegion := NewRegionFromPath(path.Transform(transform), a.viewportRegion())
	if op == OpReplace {
		a.clipRegion = rectRegion
	} else {
		a.clipRegion = a.clipRegion.Intersect(rectRegion)
	}
	a.onClipRegionUpdated()
}

// onClipRegionUpdated refreshes the cached clip bounds and collapses an
// exactly rectangular region back to rectangle mode.
func (a *Area) onClipRegionUpdated() {
	if !a.clipRegion.IsEmpty() {
		a.clipRect = a.clipRegion.Bounds().Rect()

		if a.clipRegion.IsRect() {
			a.clipRegion = nil
			a.mode = ModeRectangle
		}
	} else {
		a.clipRect = uirender.Rect{}
	}
}

func (a *Area) viewportRegion() *Region {
	return NewRegionFromRect(RoundRect(a.viewportBounds))
}

// --------------------------------------------------------------------------
// Serialization
// --------------------------------------------------------------------------

// onChanged invalidates the serialization memo. Every mutating entry point
// calls it before touching the clip.
func (a *Area) onChanged() {
	a.lastSerialization = nil
	a.lastResolution = nil
	a.lastResolvedClip = nil
}

// Serialize returns an immutable snapshot of the current clip. Repeated
// calls against an unmodified clip return the identical pointer, so
// downstream consumers can use pointer equality as a "same clip" test.
func (a *Area) Serialize() *State {
	if a.lastSerialization == nil {
		s := &State{Mode: a.mode, Rect: a.clipRect}
		switch a.mode {
		case ModeRectangleList:
			s.RectList = a.rectList
		case ModeRegion:
			s.Region = a.clipRegion
		}
		a.lastSerialization = s
	}
	return a.lastSerialization
}

// SerializeIntersected composes a previously recorded local clip with the
// current clip under the given record-space-to-device transform, and
// returns an immutable snapshot of the result. Used when baking an op's
// final state. The result is memoized per (recordedClip, transform) pair;
// a nil recorded clip yields Serialize().
func (a *Area) SerializeIntersected(recorded *State, transform uirender.Matrix) *State {
	if recorded == nil {
		return a.Serialize()
	}
	if a.lastResolution == nil || recorded != a.lastResolvedClip || transform != a.lastResolvedMat {
		scratch := Area{
			mode:           a.mode,
			viewportBounds: a.viewportBounds,
			clipRect:       a.clipRect,
			clipRegion:     a.clipRegion,
			rectList:       a.rectList,
		}
		switch recorded.Mode {
		case ModeRectangle:
			scratch.ClipRectWithTransform(recorded.Rect, transform, OpIntersect)
		case ModeRectangleList:
			for i := 0; i < recorded.RectList.Count(); i++ {
				tr := recorded.RectList.At(i)
				scratch.ClipRectWithTransform(tr.Bounds, transform.Multiply(tr.Transform), OpIntersect)
			}
		case ModeRegion:
			path := uirender.NewPath()
			for _, ir := range recorded.Region.Rects() {
				path.AddRect(ir.Rect())
			}
			scratch.ClipRegion(NewRegionFromPath(path.Transform(transform), scratch.viewportRegion()), OpIntersect)
		}
		a.lastResolution = scratch.Serialize()
		a.lastResolvedClip = recorded
		a.lastResolvedMat = transform
	}
	return a.lastResolution
}
