package record

import (
	"image"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
)

// barrierType is the pending chunk boundary set by InsertReorderBarrier.
// Consecutive barriers collapse to the last one; a chunk only materializes
// when an op or child is actually recorded.
type barrierType uint8

const (
	barrierNone barrierType = iota
	barrierInOrder
	barrierOutOfOrder
)

// snapshot is one entry of the canvas save stack.
type snapshot struct {
	transform uirender.Matrix
	clip      *clip.Area

	// viewport bounds the current render target in its own space. Reset by
	// save-layers, which open a new target.
	viewport uirender.Rect

	// fboTarget marks a save-layer snapshot; its restore emits EndLayerOp.
	fboTarget bool
}

// Canvas records drawing commands into a DisplayList. Recording captures
// the transform, clip, and interned paint with each op; nothing is drawn
// until the list is baked and replayed.
//
// Canvas is single use: FinishRecording freezes the list, after which any
// further recording panics.
type Canvas struct {
	width, height int

	ops      []Op
	children []*RenderNodeOp
	chunks   []Chunk

	projectionReceiveIndex int
	hasDrawOps             bool

	stack []snapshot

	deferredBarrier barrierType

	// paints interns recorded paints by value, so re-recording an
	// unchanged paint yields the same stored pointer.
	paints map[uirender.Paint]*uirender.Paint

	finished bool
}

// NewCanvas creates a recording canvas for a render target of the given
// size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		width:                  width,
		height:                 height,
		projectionReceiveIndex: -1,
		deferredBarrier:        barrierInOrder,
		paints:                 make(map[uirender.Paint]*uirender.Paint),
	}
	c.stack = append(c.stack, snapshot{
		transform: uirender.Identity(),
		clip:      clip.NewArea(width, height),
		viewport:  uirender.MakeRect(0, 0, float64(width), float64(height)),
	})
	return c
}

func (c *Canvas) current() *snapshot {
	return &c.stack[len(c.stack)-1]
}

func (c *Canvas) checkRecording() {
	if c.finished {
		panic("record: canvas used after FinishRecording")
	}
}

// --------------------------------------------------------------------------
// Save stack
// --------------------------------------------------------------------------

// Save pushes the current transform and clip. Returns the save count to
// pass to RestoreToCount for restoring to the state before this call.
func (c *Canvas) Save() int {
	c.checkRecording()
	count := len(c.stack)
	cur := c.current()
	c.stack = append(c.stack, snapshot{
		transform: cur.transform,
		clip:      cur.clip.Copy(),
		viewport:  cur.viewport,
	})
	return count
}

// Restore pops the most recent save. Restoring past the base state panics.
func (c *Canvas) Restore() {
	c.checkRecording()
	if len(c.stack) <= 1 {
		panic("record: restore without matching save")
	}
	popped := c.current()
	if popped.fboTarget {
		c.addOp(&EndLayerOp{})
	}
	c.stack = c.stack[:len(c.stack)-1]
}

// RestoreToCount pops saves until the stack depth matches the given save
// count, as returned by Save.
func (c *Canvas) RestoreToCount(count int) {
	c.checkRecording()
	if count < 1 {
		panic("record: restore count below base state")
	}
	for len(c.stack) > count {
		c.Restore()
	}
}

// SaveCount returns the current save stack depth.
func (c *Canvas) SaveCount() int { return len(c.stack) }

// --------------------------------------------------------------------------
// Transform
// --------------------------------------------------------------------------

// Translate post-multiplies a translation into the current transform.
func (c *Canvas) Translate(dx, dy float64) {
	c.checkRecording()
	cur := c.current()
	cur.transform = cur.transform.Multiply(uirender.Translate(dx, dy))
}

// Scale post-multiplies a scale into the current transform.
func (c *Canvas) Scale(sx, sy float64) {
	c.checkRecording()
	cur := c.current()
	cur.transform = cur.transform.Multiply(uirender.Scale(sx, sy))
}

// Rotate post-multiplies a rotation (radians) into the current transform.
func (c *Canvas) Rotate(angle float64) {
	c.checkRecording()
	cur := c.current()
	cur.transform = cur.transform.Multiply(uirender.Rotate(angle))
}

// Concat post-multiplies an arbitrary matrix into the current transform.
func (c *Canvas) Concat(m uirender.Matrix) {
	c.checkRecording()
	cur := c.current()
	cur.transform = cur.transform.Multiply(m)
}

// SetMatrix replaces the current transform.
func (c *Canvas) SetMatrix(m uirender.Matrix) {
	c.checkRecording()
	c.current().transform = m
}

// Matrix returns the current transform.
func (c *Canvas) Matrix() uirender.Matrix { return c.current().transform }

// --------------------------------------------------------------------------
// Clip
// --------------------------------------------------------------------------

// ClipRect combines a rectangle into the current clip under the current
// transform.
func (c *Canvas) ClipRect(left, top, right, bottom float64, op clip.Op) {
	c.checkRecording()
	cur := c.current()
	cur.clip.ClipRectWithTransform(uirender.MakeRect(left, top, right, bottom), cur.transform, op)
}

// ClipPath combines a path into the current clip under the current
// transform.
func (c *Canvas) ClipPath(path *uirender.Path, op clip.Op) {
	c.checkRecording()
	cur := c.current()
	cur.clip.ClipPathWithTransform(path, cur.transform, op)
}

// QuickRejected reports whether bounds mapped by the current transform fall
// entirely outside the current clip.
func (c *Canvas) QuickRejected(bounds uirender.Rect) bool {
	cur := c.current()
	return !cur.transform.MapRect(bounds).Intersects(cur.clip.ClipRect())
}

// --------------------------------------------------------------------------
// Layers
// --------------------------------------------------------------------------

// SaveLayerAlpha opens a save-layer: subsequent ops record into an
// offscreen target that is composited back with the given alpha on the
// matching restore. Layer bounds are trimmed to what is actually visible
// through the current clip and viewport; a fully clipped-out layer records
// nothing.
func (c *Canvas) SaveLayerAlpha(left, top, right, bottom, alpha float64) int {
	c.checkRecording()
	count := len(c.stack)
	cur := c.current()
	unmapped := uirender.MakeRect(left, top, right, bottom)

	visible := cur.transform.MapRect(unmapped)
	visible = visible.Intersect(cur.clip.ClipRect())
	visible = visible.Intersect(cur.viewport)
	layerBounds := cur.transform.Invert().MapRect(visible).Intersect(unmapped)

	if layerBounds.IsEmpty() {
		// Nothing of the layer can ever show. Push a snapshot that clips
		// everything out so the content records as rejected.
		empty := cur.clip.Copy()
		empty.SetEmpty()
		c.stack = append(c.stack, snapshot{
			transform: cur.transform,
			clip:      empty,
			viewport:  cur.viewport,
		})
		return count
	}

	layerPaint := uirender.Paint{Color: uirender.White.WithAlpha(alpha)}
	c.addOp(&BeginLayerOp{BaseOp: BaseOp{
		UnmappedBounds: unmapped,
		LocalMatrix:    cur.transform,
		LocalClip:      cur.clip.Serialize(),
		Paint:          c.refPaint(&layerPaint),
	}})

	// The layer target is always sized and addressed from the requested
	// bounds; the visible trim narrows only the clip. Content keeps its
	// (left, top) offset even when the outer clip cuts into the layer.
	w := int(unmapped.Width())
	h := int(unmapped.Height())
	area := clip.NewArea(w, h)
	area.SetClip(layerBounds.Left-left, layerBounds.Top-top,
		layerBounds.Right-left, layerBounds.Bottom-top)
	c.stack = append(c.stack, snapshot{
		transform: uirender.Translate(-left, -top),
		clip:      area,
		viewport:  uirender.MakeRect(0, 0, float64(w), float64(h)),
		fboTarget: true,
	})
	return count
}

// --------------------------------------------------------------------------
// Draw calls
// --------------------------------------------------------------------------

// DrawRect records a rectangle.
func (c *Canvas) DrawRect(left, top, right, bottom float64, paint *uirender.Paint) {
	c.checkRecording()
	c.addOp(&RectOp{BaseOp: c.baseOp(uirender.MakeRect(left, top, right, bottom), paint)})
}

// DrawLines records a batch of line segments from x,y coordinate pairs.
// A trailing partial segment is dropped. Bounds cover the retained points
// outset by half the stroke width (minimum half a pixel each side).
func (c *Canvas) DrawLines(points []float64, paint *uirender.Paint) {
	c.checkRecording()
	floatCount := len(points) &^ 3
	if floatCount < 4 {
		return
	}
	pts := make([]float64, floatCount)
	copy(pts, points)

	bounds := uirender.Rect{Left: pts[0], Top: pts[1], Right: pts[0], Bottom: pts[1]}
	for i := 2; i < floatCount; i += 2 {
		bounds = bounds.ExpandToCover(pts[i], pts[i+1])
	}
	strokeWidth := 1.0
	if paint != nil && paint.StrokeWidth > strokeWidth {
		strokeWidth = paint.StrokeWidth
	}
	bounds = bounds.Outset(strokeWidth * 0.5)

	op := &LinesOp{BaseOp: c.baseOp(bounds, paint), Points: pts}
	c.addOp(op)
}

// DrawBitmap records an image at the given position. The paint carries
// alpha and blend for the composite; nil means opaque src-over.
func (c *Canvas) DrawBitmap(img image.Image, x, y float64, paint *uirender.Paint) {
	c.checkRecording()
	if img == nil {
		return
	}
	size := img.Bounds().Size()
	c.Save()
	c.Translate(x, y)
	c.addOp(&BitmapOp{
		BaseOp: c.baseOp(uirender.MakeRect(0, 0, float64(size.X), float64(size.Y)), paint),
		Image:  img,
	})
	c.Restore()
}

// DrawGlyphs records a positioned glyph run. Glyph positions are relative
// to (x, y); bounds must cover the run's ink extents, which only the
// upstream shaper knows.
func (c *Canvas) DrawGlyphs(glyphs []font.GID, positions []fixed.Point26_6, x, y float64, bounds uirender.Rect, paint *uirender.Paint) {
	c.checkRecording()
	if len(glyphs) == 0 || len(glyphs) != len(positions) {
		return
	}
	op := &TextOp{
		BaseOp:    c.baseOp(bounds, paint),
		Glyphs:    append([]font.GID(nil), glyphs...),
		Positions: append([]fixed.Point26_6(nil), positions...),
		X:         x,
		Y:         y,
	}
	c.addOp(op)
}

// DrawRenderNode records a child node reference at its staged position.
// A node with no recorded content is skipped.
func (c *Canvas) DrawRenderNode(node *RenderNode) {
	c.checkRecording()
	if node == nil || !node.hasStagedContent() {
		return
	}
	props := node.MutateStagingProperties()
	op := &RenderNodeOp{
		BaseOp: BaseOp{
			UnmappedBounds: uirender.MakeRectWH(props.Left, props.Top, props.Width, props.Height),
			LocalMatrix:    c.current().transform,
			LocalClip:      c.current().clip.Serialize(),
		},
		Node: node,
	}
	c.addOp(op)
	c.children = append(c.children, op)
	if props.ProjectionReceiver {
		c.projectionReceiveIndex = len(c.children) - 1
	}
}

// DrawLayer records compositing of an already-rendered layer buffer.
func (c *Canvas) DrawLayer(layer *LayerHandle, alpha float64) {
	c.checkRecording()
	if layer == nil {
		return
	}
	var w, h float64
	if layer.Buffer != nil {
		w = float64(layer.Buffer.ViewportWidth())
		h = float64(layer.Buffer.ViewportHeight())
	}
	op := &LayerOp{
		BaseOp: c.baseOp(uirender.MakeRect(0, 0, w, h), nil),
		Layer:  layer,
		Alpha:  alpha,
	}
	c.addOp(op)
}

// hasStagedContent reports whether the node has a non-empty display list on
// either side of its double buffer.
func (n *RenderNode) hasStagedContent() bool {
	if n.stagingListDirty {
		return n.stagingDisplayList != nil && !n.stagingDisplayList.IsEmpty()
	}
	return n.displayList != nil && !n.displayList.IsEmpty()
}

// --------------------------------------------------------------------------
// Chunks
// --------------------------------------------------------------------------

// InsertReorderBarrier opens a new chunk at the next recorded op or child.
// The flag selects whether that chunk's children may be Z reordered.
// Consecutive barriers collapse; a barrier with nothing recorded after it
// produces no chunk.
func (c *Canvas) InsertReorderBarrier(reorder bool) {
	c.checkRecording()
	if reorder {
		c.deferredBarrier = barrierOutOfOrder
	} else {
		c.deferredBarrier = barrierInOrder
	}
}

func (c *Canvas) flushDeferredBarrier() {
	if c.deferredBarrier == barrierNone {
		return
	}
	c.closeChunk()
	c.chunks = append(c.chunks, Chunk{
		BeginOpIndex:    len(c.ops),
		BeginChildIndex: len(c.children),
		ReorderChildren: c.deferredBarrier == barrierOutOfOrder,
	})
	c.deferredBarrier = barrierNone
}

func (c *Canvas) closeChunk() {
	if n := len(c.chunks); n > 0 {
		c.chunks[n-1].EndOpIndex = len(c.ops)
		c.chunks[n-1].EndChildIndex = len(c.children)
	}
}

// --------------------------------------------------------------------------
// Recording
// --------------------------------------------------------------------------

func (c *Canvas) baseOp(bounds uirender.Rect, paint *uirender.Paint) BaseOp {
	cur := c.current()
	return BaseOp{
		UnmappedBounds: bounds,
		LocalMatrix:    cur.transform,
		LocalClip:      cur.clip.Serialize(),
		Paint:          c.refPaint(paint),
	}
}

// refPaint interns a paint by value: equal paints map to one stored copy,
// so the batcher's pointer comparison catches unchanged paints across
// recordings into the same canvas.
func (c *Canvas) refPaint(paint *uirender.Paint) *uirender.Paint {
	if paint == nil {
		return nil
	}
	if stored, ok := c.paints[*paint]; ok {
		return stored
	}
	stored := new(uirender.Paint)
	*stored = *paint
	c.paints[*paint] = stored
	return stored
}

func (c *Canvas) addOp(op Op) {
	c.flushDeferredBarrier()
	c.ops = append(c.ops, op)
	switch op.Kind() {
	case OpRect, OpLines, OpBitmap, OpText, OpSimpleRects, OpLayer:
		c.hasDrawOps = true
	}
}

// FinishRecording freezes the recording and returns the display list.
// The canvas must not be used afterwards.
func (c *Canvas) FinishRecording() *DisplayList {
	c.checkRecording()
	c.finished = true
	c.closeChunk()
	return &DisplayList{
		ops:                    c.ops,
		children:               c.children,
		chunks:                 c.chunks,
		projectionReceiveIndex: c.projectionReceiveIndex,
		hasDrawOps:             c.hasDrawOps,
	}
}
