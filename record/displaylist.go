package record

// Chunk is a contiguous run of ops and child nodes that share a reorder
// policy. Index ranges are half-open; consecutive chunks are gap-free, so
// together they cover the whole display list.
type Chunk struct {
	BeginOpIndex int
	EndOpIndex   int

	BeginChildIndex int
	EndChildIndex   int

	// ReorderChildren permits Z reordering of the chunk's child nodes at
	// defer time. Ops themselves always replay in recorded order.
	ReorderChildren bool
}

// DisplayList is the frozen product of a recording: the ordered op list, the
// referenced child nodes, and the chunk structure produced by reorder
// barriers. Immutable once produced by FinishRecording.
type DisplayList struct {
	ops      []Op
	children []*RenderNodeOp
	chunks   []Chunk

	// projectionReceiveIndex is the child index of the projection receiver
	// background, -1 when the list has none.
	projectionReceiveIndex int

	hasDrawOps bool
}

// Ops returns the recorded ops in order.
func (d *DisplayList) Ops() []Op { return d.ops }

// OpAt returns the op at index i.
func (d *DisplayList) OpAt(i int) Op { return d.ops[i] }

// Children returns the recorded child node references in order.
func (d *DisplayList) Children() []*RenderNodeOp { return d.children }

// Chunks returns the chunk structure.
func (d *DisplayList) Chunks() []Chunk { return d.chunks }

// ProjectionReceiveIndex returns the child index of the projection
// receiver, -1 when none was recorded.
func (d *DisplayList) ProjectionReceiveIndex() int { return d.projectionReceiveIndex }

// IsEmpty reports whether the list records no ops.
func (d *DisplayList) IsEmpty() bool { return len(d.ops) == 0 }

// HasDrawOps reports whether the list contains at least one op that draws
// pixels (as opposed to structural ops only).
func (d *DisplayList) HasDrawOps() bool { return d.hasDrawOps }
