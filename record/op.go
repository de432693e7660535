// Package record implements the recording half of the pipeline: drawing
// commands are captured as typed, immutable RecordedOp values in an ordered,
// chunked DisplayList, ready to be baked and replayed by the frame package.
//
// Design follows the command-struct approach: each op is a plain struct
// carrying the local transform/clip/paint that were active when it was
// recorded, referenced by index into the owning display list.
//
// # Example
//
//	canvas := record.NewCanvas(200, 200)
//	canvas.Save()
//	canvas.Translate(10, 10)
//	canvas.DrawRect(0, 0, 50, 50, paint)
//	canvas.Restore()
//	list := canvas.FinishRecording()
package record

import (
	"image"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
	"github.com/gogpu/uirender/pool"
)

// OpKind identifies the type of a recorded op. Values are dense (0..N),
// enabling O(1) dispatch-table lookups.
type OpKind uint8

const (
	// OpRect fills or strokes an axis-aligned rectangle.
	OpRect OpKind = iota
	// OpLines draws a batch of line segments.
	OpLines
	// OpBitmap draws an image.
	OpBitmap
	// OpText draws a positioned glyph run.
	OpText
	// OpSimpleRects fills pre-transformed axis-aligned rectangles.
	OpSimpleRects
	// OpRenderNode references a child render node's display list.
	OpRenderNode
	// OpBeginLayer opens a save-layer region.
	OpBeginLayer
	// OpEndLayer closes the matching save-layer region.
	OpEndLayer
	// OpLayer composites an offscreen buffer.
	OpLayer

	opKindCount
)

// opKindNames maps OpKind values to their string representation.
var opKindNames = [...]string{
	OpRect:        "Rect",
	OpLines:       "Lines",
	OpBitmap:      "Bitmap",
	OpText:        "Text",
	OpSimpleRects: "SimpleRects",
	OpRenderNode:  "RenderNode",
	OpBeginLayer:  "BeginLayer",
	OpEndLayer:    "EndLayer",
	OpLayer:       "Layer",
}

// String returns the string representation of an OpKind.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "Unknown"
}

// BaseOp holds the state shared by every recorded op: bounds in the local
// recording space (pre-transform), the transform and clip active at record
// time, and an optional interned paint. Ops are immutable once recorded.
type BaseOp struct {
	// UnmappedBounds are the op's bounds in local recording space.
	UnmappedBounds uirender.Rect

	// LocalMatrix is the transform active at record time, relative to the
	// enclosing display list's origin.
	LocalMatrix uirender.Matrix

	// LocalClip is the serialized clip active at record time, in the same
	// local space. Pointer-shared between ops recorded under an unchanged
	// clip (see clip.Area serialization memoization).
	LocalClip *clip.State

	// Paint is the interned paint reference, nil for paint-less ops.
	Paint *uirender.Paint
}

// Base returns the op's shared state.
func (b *BaseOp) Base() *BaseOp { return b }

// LocalClipRect returns the bounding rectangle of the recorded clip.
func (b *BaseOp) LocalClipRect() uirender.Rect {
	if b.LocalClip == nil {
		return uirender.Rect{}
	}
	return b.LocalClip.Rect
}

// Op is the interface implemented by all recorded op types.
type Op interface {
	// Kind returns the OpKind for this op.
	Kind() OpKind
	// Base returns the op's shared state.
	Base() *BaseOp
}

// --------------------------------------------------------------------------
// Drawing Ops
// --------------------------------------------------------------------------

// RectOp fills or strokes an axis-aligned rectangle (styling per Paint).
type RectOp struct {
	BaseOp
}

// Kind implements Op.
func (*RectOp) Kind() OpKind { return OpRect }

// LinesOp draws a batch of independent line segments.
type LinesOp struct {
	BaseOp
	// Points holds x,y pairs; the length is always a multiple of 4
	// (two points per segment); recording trims a trailing partial
	// segment.
	Points []float64
}

// Kind implements Op.
func (*LinesOp) Kind() OpKind { return OpLines }

// BitmapOp draws an image.
type BitmapOp struct {
	BaseOp
	Image image.Image
}

// Kind implements Op.
func (*BitmapOp) Kind() OpKind { return OpBitmap }

// TextOp draws an already-shaped, positioned glyph run. Shaping and layout
// happen upstream; this op only carries the result.
type TextOp struct {
	BaseOp
	// Glyphs are the font glyph indices of the run.
	Glyphs []font.GID
	// Positions are per-glyph baseline origins, parallel to Glyphs.
	Positions []fixed.Point26_6
	// X, Y is the run origin the positions are relative to.
	X, Y float64
}

// Kind implements Op.
func (*TextOp) Kind() OpKind { return OpText }

// SimpleRectsOp fills pre-transformed axis-aligned rectangles. Used for
// backdrop clears, where geometry is already in layer space.
type SimpleRectsOp struct {
	BaseOp
	// Vertices holds x,y pairs, four corners per rectangle.
	Vertices []float64
}

// Kind implements Op.
func (*SimpleRectsOp) Kind() OpKind { return OpSimpleRects }

// --------------------------------------------------------------------------
// Structural Ops
// --------------------------------------------------------------------------

// RenderNodeOp references a child render node. The node is borrowed, not
// copied: its display list is resolved lazily at replay time, so a child
// that re-records between the parent's recording and replay contributes
// its current content.
type RenderNodeOp struct {
	BaseOp
	Node *RenderNode

	// SkipInOrderDraw suppresses the op at its natural position; set when
	// the child is drawn out of band (projection or Z reordering).
	SkipInOrderDraw bool
}

// Kind implements Op.
func (*RenderNodeOp) Kind() OpKind { return OpRenderNode }

// BeginLayerOp opens a save-layer region. It carries the pre-layer
// transform and clip so replay can position the composited layer, and the
// layer paint (alpha) in BaseOp.Paint.
type BeginLayerOp struct {
	BaseOp
}

// Kind implements Op.
func (*BeginLayerOp) Kind() OpKind { return OpBeginLayer }

// EndLayerOp closes the innermost open save-layer region.
type EndLayerOp struct {
	BaseOp
}

// Kind implements Op.
func (*EndLayerOp) Kind() OpKind { return OpEndLayer }

// LayerHandle is an indirection to an offscreen buffer that may not exist
// yet at record/defer time: save-layer buffers are allocated during replay,
// after the LayerOp referencing them has already been deferred.
type LayerHandle struct {
	Buffer *pool.OffscreenBuffer
}

// LayerOp composites the content of an offscreen buffer into the current
// render target.
type LayerOp struct {
	BaseOp

	// Layer resolves to the offscreen buffer at replay time.
	Layer *LayerHandle

	// Alpha is the compositing alpha in [0, 1].
	Alpha float64

	// DestroyAfterUse releases the buffer to the pool after compositing.
	// Set for save-layer (one-shot) layers, clear for persistent hardware
	// layers.
	DestroyAfterUse bool
}

// Kind implements Op.
func (*LayerOp) Kind() OpKind { return OpLayer }
