package frame

import (
	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/pool"
	"github.com/gogpu/uirender/record"
)

// Renderer drives render target lifecycle during replay. The frame builder
// calls it once per target, in paint order: offscreen layers first, the
// frame last.
type Renderer interface {
	// StartFrame binds the primary target.
	StartFrame(width, height int, repaintRect uirender.Rect) error
	// EndFrame finishes the primary target.
	EndFrame(repaintRect uirender.Rect) error

	// StartTemporaryLayer allocates and binds a one-frame offscreen
	// buffer for a save-layer.
	StartTemporaryLayer(width, height int) (*pool.OffscreenBuffer, error)
	// StartRepaintLayer binds an existing hardware layer buffer for
	// partial repaint.
	StartRepaintLayer(buffer *pool.OffscreenBuffer, repaintRect uirender.Rect) error
	// EndLayer finishes the current offscreen target.
	EndLayer() error
}

// Dispatcher receives baked ops during replay, one call per unmerged op
// and one per merged group.
type Dispatcher interface {
	OnRectOp(op *record.RectOp, state *BakedOpState)
	OnLinesOp(op *record.LinesOp, state *BakedOpState)
	OnBitmapOp(op *record.BitmapOp, state *BakedOpState)
	OnTextOp(op *record.TextOp, state *BakedOpState)
	OnSimpleRectsOp(op *record.SimpleRectsOp, state *BakedOpState)
	OnLayerOp(op *record.LayerOp, state *BakedOpState)

	OnMergedBitmapOps(list MergedOpList)
	OnMergedTextOps(list MergedOpList)
}

// LayerUpdateEntry pairs a hardware-layered node with the damage to
// repaint this frame.
type LayerUpdateEntry struct {
	Node   *record.RenderNode
	Damage uirender.Rect
}

// LayerUpdateQueue collects the hardware layers that must repaint before
// the frame draws. Damage accumulates per node; order of first enqueue is
// preserved so dependent layers repaint before their consumers.
type LayerUpdateQueue struct {
	entries []LayerUpdateEntry
}

// Enqueue adds damage for a node, merging with an existing entry.
func (q *LayerUpdateQueue) Enqueue(node *record.RenderNode, damage uirender.Rect) {
	props := node.Properties()
	damage = damage.Intersect(uirender.MakeRect(0, 0, props.Width, props.Height))
	if damage.IsEmpty() {
		return
	}
	for i := range q.entries {
		if q.entries[i].Node == node {
			q.entries[i].Damage = q.entries[i].Damage.Union(damage)
			return
		}
	}
	q.entries = append(q.entries, LayerUpdateEntry{Node: node, Damage: damage})
}

// Entries returns the queued updates in enqueue order.
func (q *LayerUpdateQueue) Entries() []LayerUpdateEntry {
	if q == nil {
		return nil
	}
	return q.entries
}

// Clear empties the queue.
func (q *LayerUpdateQueue) Clear() {
	q.entries = nil
}
