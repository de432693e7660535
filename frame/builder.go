// Package frame turns recorded display lists into an optimized frame: ops
// are baked against the accumulated transform/clip state, rejected when
// fully clipped, reordered into batches per render target, and finally
// replayed through a Renderer/Dispatcher pair.
//
// Each render target (the frame, every save-layer, every hardware layer
// repaint) gets its own LayerBuilder; replay visits layers in reverse
// creation order so every layer's content exists before something draws it.
package frame

import (
	"sort"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
	"github.com/gogpu/uirender/record"
)

// Builder traverses display lists and render node trees, baking and
// batching every visible op. It is single use: defer everything, then call
// Replay once.
type Builder struct {
	// layers indexes every render target; index 0 is the frame.
	layers []*LayerBuilder

	// layerStack holds indices into layers for the currently open
	// targets. Finished layers leave the stack but stay in layers for
	// replay.
	layerStack []int

	stack []*Snapshot
}

// NewBuilder creates a frame builder for a viewport of the given size.
func NewBuilder(width, height int) *Builder {
	fbo0 := newLayerBuilder(width, height)
	fbo0.repaintRect = uirender.MakeRect(0, 0, float64(width), float64(height))
	return &Builder{
		layers:     []*LayerBuilder{fbo0},
		layerStack: []int{0},
		stack:      []*Snapshot{NewSnapshot(width, height)},
	}
}

func (b *Builder) currentLayer() *LayerBuilder {
	return b.layers[b.layerStack[len(b.layerStack)-1]]
}

func (b *Builder) snapshot() *Snapshot {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) save() int {
	count := len(b.stack)
	s := b.snapshot()
	b.stack = append(b.stack, &Snapshot{
		Transform: s.Transform,
		Clip:      s.Clip.Copy(),
		Alpha:     s.Alpha,
	})
	return count
}

func (b *Builder) restoreToCount(count int) {
	b.stack = b.stack[:count]
}

// --------------------------------------------------------------------------
// Entry points
// --------------------------------------------------------------------------

// DeferLayerUpdates defers repaints for every damaged hardware layer.
// Layers are deferred in reverse queue order; since replay also runs in
// reverse, they repaint in the order they were enqueued, before anything
// that composites them.
func (b *Builder) DeferLayerUpdates(queue *LayerUpdateQueue) {
	entries := queue.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		node := entries[i].Node
		damage := entries[i].Damage
		if node.Layer() == nil || node.Layer().Buffer == nil || node.DisplayList() == nil {
			continue
		}
		props := node.Properties()
		b.saveForLayer(int(props.Width), int(props.Height), nil, node)

		lb := b.currentLayer()
		lb.repaintRect = damage
		lb.deferLayerClear(damage)
		b.snapshot().Clip.SetClip(damage.Left, damage.Top, damage.Right, damage.Bottom)

		b.deferDisplayList(node.DisplayList())
		b.restoreForLayer()
	}
}

// DeferRenderNode defers a root node's subtree into the frame.
func (b *Builder) DeferRenderNode(node *record.RenderNode) {
	if nothingToDraw(node) {
		return
	}
	count := b.save()
	b.deferNodePropsAndOps(node)
	b.restoreToCount(count)
}

// DeferDisplayList defers a bare display list into the frame, without node
// properties. Used for content recorded directly against the viewport.
func (b *Builder) DeferDisplayList(list *record.DisplayList) {
	if list == nil || list.IsEmpty() {
		return
	}
	count := b.save()
	b.deferDisplayList(list)
	b.restoreToCount(count)
}

// Replay issues every deferred layer through the renderer and dispatcher:
// offscreen layers in reverse creation order, the frame last. Temporary
// layer buffers are allocated here and wired to the LayerOps that
// composite them.
func (b *Builder) Replay(renderer Renderer, dispatcher Dispatcher) error {
	for i := len(b.layers) - 1; i >= 1; i-- {
		lb := b.layers[i]
		if lb.node != nil {
			// Hardware layer repaint; runs even when empty, since the
			// clear itself is the visible result.
			if err := renderer.StartRepaintLayer(lb.handle.Buffer, lb.repaintRect); err != nil {
				return err
			}
			lb.replay(dispatcher)
			if err := renderer.EndLayer(); err != nil {
				return err
			}
		} else if !lb.Empty() {
			buffer, err := renderer.StartTemporaryLayer(lb.width, lb.height)
			if err != nil {
				return err
			}
			lb.handle.Buffer = buffer
			lb.replay(dispatcher)
			if err := renderer.EndLayer(); err != nil {
				return err
			}
		}
	}

	fbo0 := b.layers[0]
	if err := renderer.StartFrame(fbo0.width, fbo0.height, fbo0.repaintRect); err != nil {
		return err
	}
	fbo0.replay(dispatcher)
	return renderer.EndFrame(fbo0.repaintRect)
}

// --------------------------------------------------------------------------
// Node traversal
// --------------------------------------------------------------------------

func nothingToDraw(node *record.RenderNode) bool {
	if node == nil || node.Properties().Alpha <= 0 {
		return true
	}
	list := node.DisplayList()
	return list == nil || list.IsEmpty()
}

// deferNodePropsAndOps applies a node's properties (transform, clip,
// alpha, layer indirection) to the canvas state and defers its content.
// Callers wrap it in a save/restore pair.
func (b *Builder) deferNodePropsAndOps(node *record.RenderNode) {
	props := node.Properties()
	s := b.snapshot()
	s.Transform = s.Transform.Multiply(props.TransformMatrix())

	bounds := uirender.MakeRect(0, 0, props.Width, props.Height)
	if props.ClipToBounds {
		s.Clip.ClipRectWithTransform(bounds, s.Transform, clip.OpIntersect)
	}
	if s.Clip.IsEmpty() {
		return
	}

	if node.Layer() != nil && props.LayerKind == record.LayerHardware {
		// Content lives in the layer buffer; composite it instead of
		// drawing the display list.
		op := &record.LayerOp{
			BaseOp: record.BaseOp{
				UnmappedBounds: bounds,
				LocalMatrix:    uirender.Identity(),
			},
			Layer: node.Layer(),
			Alpha: s.Alpha * props.Alpha,
		}
		if baked := TryConstruct(s, op); baked != nil {
			b.currentLayer().DeferUnmergeableOp(baked, BatchBitmap)
		}
		return
	}

	if props.Alpha < 1 && props.HasOverlappingRendering {
		b.deferNodeThroughAlphaLayer(node, bounds)
		return
	}
	s.Alpha *= props.Alpha
	b.deferDisplayList(node.DisplayList())
}

// deferNodeThroughAlphaLayer groups a translucent node's overlapping
// content in a temporary layer, composited once with the node alpha.
// Per-op alpha would double-blend wherever the content overlaps itself.
func (b *Builder) deferNodeThroughAlphaLayer(node *record.RenderNode, bounds uirender.Rect) {
	props := node.Properties()
	layerPaint := &uirender.Paint{Color: uirender.White.WithAlpha(props.Alpha)}
	// The composite bakes against the restored snapshot, which already
	// carries the node's device transform and clip. A local matrix or clip
	// here would apply that state a second time.
	beginOp := &record.BeginLayerOp{BaseOp: record.BaseOp{
		UnmappedBounds: bounds,
		LocalMatrix:    uirender.Identity(),
		Paint:          layerPaint,
	}}
	b.saveForLayer(int(bounds.Width()), int(bounds.Height()), beginOp, nil)
	b.deferDisplayList(node.DisplayList())
	b.finishLayer()
}

// deferRenderNodeOp re-applies a recorded child reference: the recorded
// transform and clip, then the child's own properties and ops.
func (b *Builder) deferRenderNodeOp(op *record.RenderNodeOp) {
	if nothingToDraw(op.Node) {
		return
	}
	count := b.save()
	s := b.snapshot()
	s.Transform = s.Transform.Multiply(op.LocalMatrix)
	if lc := op.LocalClipRect(); !lc.IsEmpty() {
		s.Clip.ClipRectWithTransform(lc, s.Transform, clip.OpIntersect)
	}
	b.deferNodePropsAndOps(op.Node)
	b.restoreToCount(count)
}

// --------------------------------------------------------------------------
// Display list traversal
// --------------------------------------------------------------------------

type projectedEntry struct {
	op *record.RenderNodeOp
	// transform maps the projected node from the receiver's space.
	transform uirender.Matrix
}

// collectProjectedNodes gathers projectBackwards grandchildren: children
// of the receiver's siblings that asked to draw on the receiver surface
// instead of at their natural position.
func collectProjectedNodes(list *record.DisplayList) []projectedEntry {
	var projected []projectedEntry
	for _, child := range list.Children() {
		if child.Node.Properties().ProjectBackwards {
			continue
		}
		inner := child.Node.DisplayList()
		if inner == nil {
			continue
		}
		base := child.LocalMatrix.Multiply(child.Node.Properties().TransformMatrix())
		for _, grand := range inner.Children() {
			if grand.Node.Properties().ProjectBackwards {
				grand.SkipInOrderDraw = true
				projected = append(projected, projectedEntry{op: grand, transform: base})
			}
		}
	}
	return projected
}

type zEntry struct {
	z  float64
	op *record.RenderNodeOp
}

func (b *Builder) deferDisplayList(list *record.DisplayList) {
	receiverIndex := list.ProjectionReceiveIndex()
	var projected []projectedEntry
	if receiverIndex >= 0 {
		projected = collectProjectedNodes(list)
	}

	children := list.Children()
	for _, chunk := range list.Chunks() {
		var zNodes []zEntry
		if chunk.ReorderChildren {
			for ci := chunk.BeginChildIndex; ci < chunk.EndChildIndex; ci++ {
				child := children[ci]
				if z := child.Node.Properties().Z(); z != 0 {
					child.SkipInOrderDraw = true
					zNodes = append(zNodes, zEntry{z: z, op: child})
				} else {
					child.SkipInOrderDraw = false
				}
			}
			sort.SliceStable(zNodes, func(i, j int) bool { return zNodes[i].z < zNodes[j].z })
		}

		// negative Z children draw under the chunk's in-order content
		for _, e := range zNodes {
			if e.z >= 0 {
				break
			}
			b.deferRenderNodeOp(e.op)
		}

		childCursor := chunk.BeginChildIndex
		for opIndex := chunk.BeginOpIndex; opIndex < chunk.EndOpIndex; opIndex++ {
			op := list.OpAt(opIndex)
			if nodeOp, ok := op.(*record.RenderNodeOp); ok {
				childIndex := childCursor
				childCursor++
				if nodeOp.SkipInOrderDraw {
					continue
				}
				b.deferRenderNodeOp(nodeOp)
				if childIndex == receiverIndex {
					b.deferProjectedNodes(projected)
				}
				continue
			}
			b.deferOp(op)
		}

		for _, e := range zNodes {
			if e.z <= 0 {
				continue
			}
			b.deferRenderNodeOp(e.op)
		}
	}
}

// deferProjectedNodes draws collected projectees right after the receiver
// background, under the receiver's space.
func (b *Builder) deferProjectedNodes(projected []projectedEntry) {
	for _, e := range projected {
		count := b.save()
		s := b.snapshot()
		s.Transform = s.Transform.Multiply(e.transform)
		b.deferRenderNodeOp(e.op)
		b.restoreToCount(count)
	}
}

// --------------------------------------------------------------------------
// Per-op deferral
// --------------------------------------------------------------------------

func tessellatedBatch(paint *uirender.Paint) BatchID {
	if paint == nil || paint.AntiAlias {
		return BatchAlphaVertices
	}
	return BatchVertices
}

func (b *Builder) deferOp(op record.Op) {
	s := b.snapshot()
	switch o := op.(type) {
	case *record.RectOp:
		if baked := TryStrokeableConstruct(s, o, false); baked != nil {
			b.currentLayer().DeferUnmergeableOp(baked, tessellatedBatch(o.Paint))
		}
	case *record.LinesOp:
		if baked := TryStrokeableConstruct(s, o, true); baked != nil {
			b.currentLayer().DeferUnmergeableOp(baked, BatchLines)
		}
	case *record.BitmapOp:
		if baked := TryConstruct(s, o); baked != nil {
			b.currentLayer().DeferMergeableOp(baked, BatchBitmap, o.Image)
		}
	case *record.TextOp:
		if baked := TryConstruct(s, o); baked != nil {
			b.currentLayer().DeferMergeableOp(baked, BatchText, o.Paint)
		}
	case *record.SimpleRectsOp:
		if baked := TryConstruct(s, o); baked != nil {
			b.currentLayer().DeferUnmergeableOp(baked, BatchVertices)
		}
	case *record.LayerOp:
		if baked := TryConstruct(s, o); baked != nil {
			b.currentLayer().DeferUnmergeableOp(baked, BatchBitmap)
		}
	case *record.BeginLayerOp:
		b.onBeginLayerOp(o)
	case *record.EndLayerOp:
		b.onEndLayerOp()
	}
}

// --------------------------------------------------------------------------
// Layer stack
// --------------------------------------------------------------------------

// saveForLayer opens a new render target: canvas state resets to the layer
// origin, and a fresh LayerBuilder goes on the stack.
func (b *Builder) saveForLayer(width, height int, beginOp *record.BeginLayerOp, node *record.RenderNode) {
	b.save()
	s := b.snapshot()
	s.Transform = uirender.Identity()
	s.Clip = clip.NewArea(width, height)
	s.Alpha = 1

	lb := newLayerBuilder(width, height)
	lb.beginLayerOp = beginOp
	if node != nil {
		lb.node = node
		lb.handle = node.Layer()
	} else {
		lb.handle = &record.LayerHandle{}
	}
	b.layerStack = append(b.layerStack, len(b.layers))
	b.layers = append(b.layers, lb)
}

func (b *Builder) restoreForLayer() {
	b.stack = b.stack[:len(b.stack)-1]
	b.layerStack = b.layerStack[:len(b.layerStack)-1]
}

func (b *Builder) onBeginLayerOp(op *record.BeginLayerOp) {
	width := int(op.UnmappedBounds.Width())
	height := int(op.UnmappedBounds.Height())
	b.saveForLayer(width, height, op, nil)
}

func (b *Builder) onEndLayerOp() {
	b.finishLayer()
}

// finishLayer pops the current save-layer and defers the LayerOp that
// composites it into the parent target, using the state captured by the
// matching BeginLayerOp. A composite rejected by the parent clip clears
// the finished layer so it does no work at replay.
func (b *Builder) finishLayer() {
	lb := b.currentLayer()
	beginOp := lb.beginLayerOp
	finishedIndex := b.layerStack[len(b.layerStack)-1]
	b.restoreForLayer()

	layerOp := &record.LayerOp{
		BaseOp: record.BaseOp{
			UnmappedBounds: beginOp.UnmappedBounds,
			LocalMatrix:    beginOp.LocalMatrix,
			LocalClip:      beginOp.LocalClip,
			Paint:          beginOp.Paint,
		},
		Layer:           b.layers[finishedIndex].handle,
		Alpha:           beginOp.Paint.Alpha(),
		DestroyAfterUse: true,
	}
	if baked := TryConstruct(b.snapshot(), layerOp); baked != nil {
		b.currentLayer().DeferUnmergeableOp(baked, BatchBitmap)
	} else {
		b.layers[finishedIndex].clear()
	}
}
