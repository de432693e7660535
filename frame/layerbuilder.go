package frame

import (
	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/record"
)

// LayerBuilder holds the deferred, batched ops of a single render target:
// the frame itself, one save-layer, or one hardware layer repaint.
type LayerBuilder struct {
	width  int
	height int

	// handle resolves to the target's offscreen buffer at replay time.
	// Nil for the frame target.
	handle *record.LayerHandle

	// beginLayerOp is set for save-layer targets; its recorded state
	// positions the composited result in the parent.
	beginLayerOp *record.BeginLayerOp

	// node is set for hardware layer repaint targets.
	node        *record.RenderNode
	repaintRect uirender.Rect

	batches       []batch
	batchLookup   [batchCount]*opBatch
	mergingLookup [batchCount]map[mergeID]*mergingOpBatch
	pendingClears []uirender.Rect
	clearPaint    uirender.Paint
}

func newLayerBuilder(width, height int) *LayerBuilder {
	return &LayerBuilder{
		width:      width,
		height:     height,
		clearPaint: uirender.Paint{Color: uirender.Transparent, Blend: uirender.BlendClear},
	}
}

// Width returns the target width in pixels.
func (lb *LayerBuilder) Width() int { return lb.width }

// Height returns the target height in pixels.
func (lb *LayerBuilder) Height() int { return lb.height }

// Empty reports whether no ops were deferred into the target.
func (lb *LayerBuilder) Empty() bool { return len(lb.batches) == 0 }

// Batches returns the current batch count.
func (lb *LayerBuilder) Batches() int { return len(lb.batches) }

func (lb *LayerBuilder) clear() {
	lb.batches = nil
	lb.batchLookup = [batchCount]*opBatch{}
	lb.mergingLookup = [batchCount]map[mergeID]*mergingOpBatch{}
	lb.pendingClears = nil
}

// deferLayerClear queues an area of the target to be cleared before its
// next draw. Used when repainting damage on a hardware layer whose old
// content must not show through.
func (lb *LayerBuilder) deferLayerClear(rect uirender.Rect) {
	lb.pendingClears = append(lb.pendingClears, rect)
}

// flushLayerClears converts queued clear rects into one synthetic
// SimpleRectsOp, deferred ahead of the draw that triggered the flush.
func (lb *LayerBuilder) flushLayerClears() {
	if len(lb.pendingClears) == 0 {
		return
	}
	vertices := make([]float64, 0, len(lb.pendingClears)*8)
	var bounds uirender.Rect
	for i, r := range lb.pendingClears {
		vertices = append(vertices,
			r.Left, r.Top,
			r.Right, r.Top,
			r.Left, r.Bottom,
			r.Right, r.Bottom)
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}
	lb.pendingClears = nil

	op := &record.SimpleRectsOp{
		BaseOp: record.BaseOp{
			UnmappedBounds: bounds,
			LocalMatrix:    uirender.Identity(),
			Paint:          &lb.clearPaint,
		},
		Vertices: vertices,
	}
	lb.insertUnmergeable(newUnclippedBakedState(op, bounds), BatchVertices)
}

// DeferUnmergeableOp adds a baked op to the target under the given batch
// id, hoisting it into the most recent compatible batch that nothing drawn
// since overlaps.
func (lb *LayerBuilder) DeferUnmergeableOp(op *BakedOpState, id BatchID) {
	lb.flushLayerClears()
	lb.insertUnmergeable(op, id)
}

func (lb *LayerBuilder) insertUnmergeable(op *BakedOpState, id BatchID) {
	targetBatch := lb.batchLookup[id]

	var target batch
	insertIndex := len(lb.batches)
	if targetBatch != nil {
		target = targetBatch
		target, insertIndex = lb.locateInsertIndex(id, op.State.ClippedBounds, target)
	}

	if target != nil {
		target.(*opBatch).batchOp(op)
		return
	}
	newBatch := newOpBatch(id, op)
	lb.batchLookup[id] = newBatch
	lb.insertBatch(newBatch, insertIndex)
}

// DeferMergeableOp adds a baked op that may be drawn by a single merged
// call with others sharing its batch and merge ids.
func (lb *LayerBuilder) DeferMergeableOp(op *BakedOpState, id BatchID, mid mergeID) {
	lb.flushLayerClears()

	var target batch
	if lookup := lb.mergingLookup[id]; lookup != nil {
		if existing, ok := lookup[mid]; ok && existing.canMergeWith(op) {
			target = existing
		}
	}

	target, insertIndex := lb.locateInsertIndex(id, op.State.ClippedBounds, target)
	if target != nil {
		target.(*mergingOpBatch).mergeOp(op)
		return
	}

	newBatch := newMergingOpBatch(id, op)
	if lb.mergingLookup[id] == nil {
		lb.mergingLookup[id] = make(map[mergeID]*mergingOpBatch)
	}
	lb.mergingLookup[id][mid] = newBatch
	lb.insertBatch(newBatch, insertIndex)
}

func (lb *LayerBuilder) insertBatch(b batch, index int) {
	lb.batches = append(lb.batches, nil)
	copy(lb.batches[index+1:], lb.batches[index:])
	lb.batches[index] = b
}

// locateInsertIndex walks batches backward from the end toward target,
// checking whether anything deferred since overlaps the new op. Finding an
// overlap voids the target (drawing into it would reorder overlapping
// content); finding a same-id batch fixes the insert position for a new
// batch so similar state stays adjacent.
func (lb *LayerBuilder) locateInsertIndex(id BatchID, clippedBounds uirender.Rect, target batch) (batch, int) {
	insertIndex := len(lb.batches)
	for i := len(lb.batches) - 1; i >= 0; i-- {
		overBatch := lb.batches[i]
		if overBatch == target {
			break
		}
		if overBatch.id() == id {
			insertIndex = i + 1
			if target == nil {
				break
			}
		}
		if overBatch.intersects(clippedBounds) {
			target = nil
			break
		}
	}
	return target, insertIndex
}

// replay dispatches the target's batches in order: merged groups through
// the merged entry points, everything else op by op.
func (lb *LayerBuilder) replay(d Dispatcher) {
	for _, b := range lb.batches {
		if b.merging() {
			m := b.(*mergingOpBatch)
			switch m.id() {
			case BatchBitmap:
				d.OnMergedBitmapOps(m.mergedList())
				continue
			case BatchText, BatchColorText:
				d.OnMergedTextOps(m.mergedList())
				continue
			}
		}
		for _, op := range b.ops() {
			dispatchOp(d, op)
		}
	}
}

func dispatchOp(d Dispatcher, state *BakedOpState) {
	switch op := state.Op.(type) {
	case *record.RectOp:
		d.OnRectOp(op, state)
	case *record.LinesOp:
		d.OnLinesOp(op, state)
	case *record.BitmapOp:
		d.OnBitmapOp(op, state)
	case *record.TextOp:
		d.OnTextOp(op, state)
	case *record.SimpleRectsOp:
		d.OnSimpleRectsOp(op, state)
	case *record.LayerOp:
		d.OnLayerOp(op, state)
	}
}
