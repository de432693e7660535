package frame

import (
	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
	"github.com/gogpu/uirender/record"
)

// Clip side flags record which sides of an op's mapped bounds were cut by
// the clip. A clipped side means the op's bounds equal the clip on that
// side, which the merge compatibility check exploits.
const (
	ClipSideNone   = 0x0
	ClipSideLeft   = 0x1
	ClipSideTop    = 0x2
	ClipSideRight  = 0x4
	ClipSideBottom = 0x8
	ClipSideFull   = 0xF
)

// Snapshot is the canvas state an op is baked against: the accumulated
// transform and clip of the render target, plus the resolved alpha.
type Snapshot struct {
	Transform uirender.Matrix
	Clip      *clip.Area
	Alpha     float64
}

// NewSnapshot creates a snapshot covering a render target of the given
// size, with identity transform and full alpha.
func NewSnapshot(width, height int) *Snapshot {
	return &Snapshot{
		Transform: uirender.Identity(),
		Clip:      clip.NewArea(width, height),
		Alpha:     1,
	}
}

// ResolvedState is the final drawing state of a baked op: the device
// transform, the serialized clip it must honor, its clipped device bounds,
// and which sides the clip actually cut.
type ResolvedState struct {
	Transform uirender.Matrix
	ClipState *clip.State

	// ClippedBounds are the op's device bounds after clipping. Empty means
	// the op was rejected.
	ClippedBounds uirender.Rect

	ClipSideFlags int
}

// ClipRect returns the bounding rectangle of the resolved clip.
func (s *ResolvedState) ClipRect() uirender.Rect {
	if s.ClipState == nil {
		return uirender.Rect{}
	}
	return s.ClipState.Rect
}

// RequiresClip reports whether a scissor or stencil clip must be set to
// draw the op correctly.
func (s *ResolvedState) RequiresClip() bool {
	return s.ClipSideFlags != ClipSideNone ||
		(s.ClipState != nil && s.ClipState.Mode != clip.ModeRectangle)
}

// BakedOpState wraps a recorded op with everything needed to draw it:
// resolved state plus the snapshot alpha. Stashed pointers reference the
// recording; nothing is owned.
type BakedOpState struct {
	State ResolvedState
	Alpha float64
	Op    record.Op
}

// TryConstruct bakes an op against a snapshot. Returns nil when the op's
// clipped bounds come out empty; rejection here is the cheap path that
// keeps fully clipped ops out of every batch.
func TryConstruct(snapshot *Snapshot, op record.Op) *BakedOpState {
	return tryConstruct(snapshot, op, false)
}

// TryStrokeableConstruct bakes an op whose geometry may extend beyond its
// unmapped bounds by half the stroke width. When forced is false, the
// expansion only applies to paints with a stroke style.
func TryStrokeableConstruct(snapshot *Snapshot, op record.Op, forced bool) *BakedOpState {
	paint := op.Base().Paint
	expand := forced || (paint != nil && paint.Style != uirender.PaintStyleFill)
	return tryConstruct(snapshot, op, expand)
}

func tryConstruct(snapshot *Snapshot, op record.Op, expandForStroke bool) *BakedOpState {
	base := op.Base()

	// resolved transform = snapshot transform * op local matrix
	transform := snapshot.Transform.Multiply(base.LocalMatrix)

	bounds := base.UnmappedBounds
	strokeWidth := 0.0
	if base.Paint != nil {
		strokeWidth = base.Paint.StrokeWidth
	}
	if expandForStroke {
		bounds = bounds.Outset(strokeWidth * 0.5)
	}
	mapped := transform.MapRect(bounds)
	if expandForStroke && (!transform.IsTranslation() || strokeWidth < 1) {
		// hairline or scaled stroke may cover up to half a device pixel
		// beyond the mapped geometry
		mapped = mapped.Outset(0.5)
	}

	clipState := snapshot.Clip.SerializeIntersected(base.LocalClip, snapshot.Transform)
	clipRect := clipState.Rect

	state := ResolvedState{Transform: transform}
	if clipRect.IsEmpty() || !mapped.Intersects(clipRect) {
		return nil
	}

	state.ClipState = clipState
	if clipRect.Left > mapped.Left {
		state.ClipSideFlags |= ClipSideLeft
	}
	if clipRect.Top > mapped.Top {
		state.ClipSideFlags |= ClipSideTop
	}
	if clipRect.Right < mapped.Right {
		state.ClipSideFlags |= ClipSideRight
	}
	if clipRect.Bottom < mapped.Bottom {
		state.ClipSideFlags |= ClipSideBottom
	}
	state.ClippedBounds = mapped.Intersect(clipRect)

	return &BakedOpState{State: state, Alpha: snapshot.Alpha, Op: op}
}

// newUnclippedBakedState wraps an op whose device geometry is already
// final, used for synthetic ops the builder creates itself (layer clears).
func newUnclippedBakedState(op record.Op, bounds uirender.Rect) *BakedOpState {
	return &BakedOpState{
		State: ResolvedState{
			Transform:     uirender.Identity(),
			ClippedBounds: bounds,
		},
		Alpha: 1,
		Op:    op,
	}
}

// MergedOpList is a group of compatible baked ops drawn by one merged
// dispatch call.
type MergedOpList struct {
	States []*BakedOpState

	// ClipSideFlags is the union of the member flags; Clip carries the
	// merged scissor, built only from the clipped sides.
	ClipSideFlags int
	Clip          uirender.Rect
}
