package frame

import (
	"github.com/gogpu/uirender"
)

// BatchID groups ops by the GPU state they need, so reordering can draw
// each group with minimal state changes.
type BatchID uint8

const (
	// BatchNone marks ops that never batch.
	BatchNone BatchID = iota
	// BatchBitmap groups textured quads.
	BatchBitmap
	// BatchVertices groups opaque tessellated geometry.
	BatchVertices
	// BatchAlphaVertices groups anti-aliased tessellated geometry.
	BatchAlphaVertices
	// BatchLines groups line meshes.
	BatchLines
	// BatchText groups glyph runs drawn with an alpha mask atlas.
	BatchText
	// BatchColorText groups glyph runs drawn with a color atlas.
	BatchColorText

	batchCount
)

// batchIDNames maps BatchID values to their string representation.
var batchIDNames = [...]string{
	BatchNone:          "None",
	BatchBitmap:        "Bitmap",
	BatchVertices:      "Vertices",
	BatchAlphaVertices: "AlphaVertices",
	BatchLines:         "Lines",
	BatchText:          "Text",
	BatchColorText:     "ColorText",
}

// String returns the string representation of a BatchID.
func (b BatchID) String() string {
	if int(b) < len(batchIDNames) {
		return batchIDNames[b]
	}
	return "Unknown"
}

// mergeID distinguishes merge groups within a batch id: the bitmap image
// for bitmap batches, the interned paint for text. Values are only ever
// compared, never inspected.
type mergeID any

// batch is the common behavior of both batch kinds.
type batch interface {
	id() BatchID
	merging() bool
	ops() []*BakedOpState
	// intersects reports whether bounds overlap any op in the batch, with
	// a cheap whole-batch bounds pre-test.
	intersects(bounds uirender.Rect) bool
}

type batchBase struct {
	batchID BatchID
	bounds  uirender.Rect
	opList  []*BakedOpState
}

func (b *batchBase) id() BatchID          { return b.batchID }
func (b *batchBase) ops() []*BakedOpState { return b.opList }

func (b *batchBase) intersects(bounds uirender.Rect) bool {
	if !bounds.Intersects(b.bounds) {
		return false
	}
	for _, op := range b.opList {
		if bounds.Intersects(op.State.ClippedBounds) {
			return true
		}
	}
	return false
}

// opBatch collects ops that share a batch id but draw one by one.
type opBatch struct {
	batchBase
}

func newOpBatch(id BatchID, op *BakedOpState) *opBatch {
	return &opBatch{batchBase{
		batchID: id,
		bounds:  op.State.ClippedBounds,
		opList:  []*BakedOpState{op},
	}}
}

func (b *opBatch) merging() bool { return false }

func (b *opBatch) batchOp(op *BakedOpState) {
	b.bounds = b.bounds.Union(op.State.ClippedBounds)
	b.opList = append(b.opList, op)
}

// mergingOpBatch collects ops that will be drawn by a single merged
// dispatch, which requires compatible paints and clips.
type mergingOpBatch struct {
	batchBase

	clipSideFlags int
	clipRect      uirender.Rect
}

func newMergingOpBatch(id BatchID, op *BakedOpState) *mergingOpBatch {
	b := &mergingOpBatch{batchBase: batchBase{
		batchID: id,
		bounds:  op.State.ClippedBounds,
		opList:  []*BakedOpState{op},
	}}
	b.absorbClip(op)
	return b
}

func (b *mergingOpBatch) merging() bool { return true }

// checkSide verifies one side of the clip compatibility invariant: a
// clipped op's bounds equal its clip on that side, so a clipped batch can
// only accept ops that fit inside it, and vice versa. boundsDelta is
// positive when the new op's bounds fit inside the batch on this side.
func checkSide(currentFlags, newFlags, side int, boundsDelta float64) bool {
	currentClipExists := currentFlags&side != 0
	newClipExists := newFlags&side != 0

	if boundsDelta > 0 && currentClipExists {
		return false
	}
	if boundsDelta < 0 && newClipExists {
		return false
	}
	return true
}

func paintIsDefault(p *uirender.Paint) bool {
	return p.Color.A == 1 && p.Blend == uirender.BlendSrcOver
}

func paintsAreEquivalent(a, b *uirender.Paint) bool {
	return a.Color.A == b.Color.A && a.Blend == b.Blend
}

// canMergeWith reports whether the merged dispatch is guaranteed to draw
// op correctly alongside the batch's existing ops. False negatives cost a
// draw call; false positives drop paint state, so every qualification errs
// toward rejection.
func (b *mergingOpBatch) canMergeWith(op *BakedOpState) bool {
	isTextBatch := b.batchID == BatchText || b.batchID == BatchColorText

	// Only text draws correctly when merged ops overlap; other merged
	// draws have no defined overdraw order.
	if !isTextBatch && b.intersects(op.State.ClippedBounds) {
		return false
	}

	first := b.opList[0]
	if op.Alpha != first.Alpha {
		return false
	}

	currentFlags := b.clipSideFlags
	newFlags := op.State.ClipSideFlags
	if currentFlags != ClipSideNone || newFlags != ClipSideNone {
		opBounds := op.State.ClippedBounds
		if !checkSide(currentFlags, newFlags, ClipSideLeft, b.bounds.Left-opBounds.Left) {
			return false
		}
		if !checkSide(currentFlags, newFlags, ClipSideTop, b.bounds.Top-opBounds.Top) {
			return false
		}
		if !checkSide(currentFlags, newFlags, ClipSideRight, opBounds.Right-b.bounds.Right) {
			return false
		}
		if !checkSide(currentFlags, newFlags, ClipSideBottom, opBounds.Bottom-b.bounds.Bottom) {
			return false
		}
	}

	newPaint := op.Op.Base().Paint
	oldPaint := first.Op.Base().Paint
	switch {
	case newPaint == oldPaint:
		return true
	case newPaint != nil && oldPaint == nil:
		return paintIsDefault(newPaint)
	case newPaint == nil && oldPaint != nil:
		return paintIsDefault(oldPaint)
	default:
		return paintsAreEquivalent(newPaint, oldPaint)
	}
}

func (b *mergingOpBatch) mergeOp(op *BakedOpState) {
	b.bounds = b.bounds.Union(op.State.ClippedBounds)
	b.opList = append(b.opList, op)
	b.absorbClip(op)
}

// absorbClip folds the op's clipped sides into the merged scissor. Only
// clipped sides contribute; unclipped sides stay open so the merged rect
// never cuts content the individual clips would have kept.
func (b *mergingOpBatch) absorbClip(op *BakedOpState) {
	newFlags := op.State.ClipSideFlags
	b.clipSideFlags |= newFlags

	opClip := op.State.ClipRect()
	if newFlags&ClipSideLeft != 0 {
		b.clipRect.Left = opClip.Left
	}
	if newFlags&ClipSideTop != 0 {
		b.clipRect.Top = opClip.Top
	}
	if newFlags&ClipSideRight != 0 {
		b.clipRect.Right = opClip.Right
	}
	if newFlags&ClipSideBottom != 0 {
		b.clipRect.Bottom = opClip.Bottom
	}
}

func (b *mergingOpBatch) mergedList() MergedOpList {
	return MergedOpList{
		States:        b.opList,
		ClipSideFlags: b.clipSideFlags,
		Clip:          b.clipRect,
	}
}
