package frame

import (
	"testing"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/record"
)

func rectOp(left, top, right, bottom float64, paint *uirender.Paint) *record.RectOp {
	return &record.RectOp{BaseOp: record.BaseOp{
		UnmappedBounds: uirender.MakeRect(left, top, right, bottom),
		LocalMatrix:    uirender.Identity(),
		Paint:          paint,
	}}
}

func TestTryConstructRejectsOutsideClip(t *testing.T) {
	s := NewSnapshot(100, 100)
	if baked := TryConstruct(s, rectOp(200, 200, 300, 300, nil)); baked != nil {
		t.Errorf("op outside the clip baked to %+v, want nil", baked)
	}
}

func TestTryConstructUnclipped(t *testing.T) {
	s := NewSnapshot(100, 100)
	baked := TryConstruct(s, rectOp(10, 10, 50, 50, nil))
	if baked == nil {
		t.Fatal("op inside the clip rejected")
	}
	if baked.State.ClipSideFlags != ClipSideNone {
		t.Errorf("clip side flags = %#x, want none", baked.State.ClipSideFlags)
	}
	if baked.State.RequiresClip() {
		t.Error("fully visible op requires clip")
	}
	if want := uirender.MakeRect(10, 10, 50, 50); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
}

func TestTryConstructClipSideFlags(t *testing.T) {
	s := NewSnapshot(100, 100)
	baked := TryConstruct(s, rectOp(-10, -10, 50, 50, nil))
	if baked == nil {
		t.Fatal("partially visible op rejected")
	}
	if want := ClipSideLeft | ClipSideTop; baked.State.ClipSideFlags != want {
		t.Errorf("clip side flags = %#x, want %#x", baked.State.ClipSideFlags, want)
	}
	if want := uirender.MakeRect(0, 0, 50, 50); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
	if !baked.State.RequiresClip() {
		t.Error("clipped op does not require clip")
	}
}

func TestTryConstructAppliesSnapshotTransform(t *testing.T) {
	s := NewSnapshot(100, 100)
	s.Transform = uirender.Translate(70, 0)
	baked := TryConstruct(s, rectOp(0, 0, 50, 50, nil))
	if baked == nil {
		t.Fatal("op rejected")
	}
	if baked.State.ClipSideFlags != ClipSideRight {
		t.Errorf("clip side flags = %#x, want right", baked.State.ClipSideFlags)
	}
	if want := uirender.MakeRect(70, 0, 100, 50); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
}

func TestTryStrokeableConstructStrokeOutset(t *testing.T) {
	paint := uirender.NewPaint()
	paint.Style = uirender.PaintStyleStroke
	paint.StrokeWidth = 4
	s := NewSnapshot(100, 100)
	baked := TryStrokeableConstruct(s, rectOp(10, 10, 50, 50, paint), false)
	if baked == nil {
		t.Fatal("stroked op rejected")
	}
	if want := uirender.MakeRect(8, 8, 52, 52); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
}

func TestTryStrokeableConstructHairlineOutset(t *testing.T) {
	s := NewSnapshot(100, 100)
	baked := TryStrokeableConstruct(s, rectOp(10, 10, 50, 50, nil), true)
	if baked == nil {
		t.Fatal("hairline op rejected")
	}
	// zero stroke width still covers half a device pixel around the geometry
	if want := uirender.MakeRect(9.5, 9.5, 50.5, 50.5); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
}

func TestTryStrokeableConstructFillNotExpanded(t *testing.T) {
	s := NewSnapshot(100, 100)
	baked := TryStrokeableConstruct(s, rectOp(10, 10, 50, 50, uirender.NewPaint()), false)
	if baked == nil {
		t.Fatal("op rejected")
	}
	if want := uirender.MakeRect(10, 10, 50, 50); baked.State.ClippedBounds != want {
		t.Errorf("clipped bounds = %+v, want %+v", baked.State.ClippedBounds, want)
	}
}

// --------------------------------------------------------------------------
// Merge compatibility
// --------------------------------------------------------------------------

func bakedText(s *Snapshot, left, top, right, bottom float64, paint *uirender.Paint) *BakedOpState {
	op := &record.TextOp{BaseOp: record.BaseOp{
		UnmappedBounds: uirender.MakeRect(left, top, right, bottom),
		LocalMatrix:    uirender.Identity(),
		Paint:          paint,
	}}
	return TryConstruct(s, op)
}

func bakedBitmap(s *Snapshot, left, top, right, bottom float64) *BakedOpState {
	op := &record.BitmapOp{BaseOp: record.BaseOp{
		UnmappedBounds: uirender.MakeRect(left, top, right, bottom),
		LocalMatrix:    uirender.Identity(),
	}}
	return TryConstruct(s, op)
}

func TestMergeRejectsOverlappingBitmaps(t *testing.T) {
	s := NewSnapshot(100, 100)
	b := newMergingOpBatch(BatchBitmap, bakedBitmap(s, 0, 0, 50, 50))
	if b.canMergeWith(bakedBitmap(s, 25, 25, 75, 75)) {
		t.Error("overlapping bitmaps merged")
	}
	if !b.canMergeWith(bakedBitmap(s, 60, 60, 90, 90)) {
		t.Error("disjoint bitmaps did not merge")
	}
}

func TestMergeAllowsOverlappingText(t *testing.T) {
	s := NewSnapshot(100, 100)
	paint := uirender.NewPaint()
	b := newMergingOpBatch(BatchText, bakedText(s, 0, 0, 50, 50, paint))
	if !b.canMergeWith(bakedText(s, 25, 25, 75, 75, paint)) {
		t.Error("overlapping text did not merge")
	}
}

func TestMergeRejectsAlphaMismatch(t *testing.T) {
	s := NewSnapshot(100, 100)
	paint := uirender.NewPaint()
	b := newMergingOpBatch(BatchText, bakedText(s, 0, 0, 50, 50, paint))

	faded := NewSnapshot(100, 100)
	faded.Alpha = 0.5
	if b.canMergeWith(bakedText(faded, 60, 60, 90, 90, paint)) {
		t.Error("ops with different snapshot alpha merged")
	}
}

func TestMergeRejectsClippedOutsider(t *testing.T) {
	s := NewSnapshot(100, 100)
	paint := uirender.NewPaint()
	// clipped on the right: bounds stop exactly at the clip edge
	clipped := bakedText(s, 60, 0, 150, 20, paint)
	if clipped.State.ClipSideFlags != ClipSideRight {
		t.Fatalf("setup: flags = %#x, want right", clipped.State.ClipSideFlags)
	}
	b := newMergingOpBatch(BatchText, clipped)

	// an op extending past the batch on the clipped side cannot join
	wide := &BakedOpState{
		State: ResolvedState{
			Transform:     uirender.Identity(),
			ClipState:     clipped.State.ClipState,
			ClippedBounds: uirender.MakeRect(60, 30, 120, 50),
		},
		Alpha: 1,
		Op: &record.TextOp{BaseOp: record.BaseOp{
			UnmappedBounds: uirender.MakeRect(60, 30, 120, 50),
			Paint:          paint,
		}},
	}
	if b.canMergeWith(wide) {
		t.Error("op extending past the merged clip joined the batch")
	}
}

func TestMergedClipAbsorbsClippedSidesOnly(t *testing.T) {
	s := NewSnapshot(100, 100)
	paint := uirender.NewPaint()
	clipped := bakedText(s, 60, 0, 150, 20, paint)
	b := newMergingOpBatch(BatchText, clipped)

	list := b.mergedList()
	if list.ClipSideFlags != ClipSideRight {
		t.Errorf("merged flags = %#x, want right", list.ClipSideFlags)
	}
	if list.Clip.Right != 100 {
		t.Errorf("merged clip right = %v, want 100", list.Clip.Right)
	}
	// unclipped sides stay open
	if list.Clip.Left != 0 || list.Clip.Top != 0 || list.Clip.Bottom != 0 {
		t.Errorf("unclipped sides folded into the merged clip: %+v", list.Clip)
	}
}

func TestLayerUpdateQueue(t *testing.T) {
	node := record.NewRenderNode("layered")
	props := node.MutateStagingProperties()
	props.Width, props.Height = 100, 100
	node.PushStagingChanges()

	var q LayerUpdateQueue
	q.Enqueue(node, uirender.MakeRect(-50, -50, 60, 60))
	q.Enqueue(node, uirender.MakeRect(40, 40, 400, 400))

	entries := q.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (same node merges)", len(entries))
	}
	// damage clamps to node bounds, unions across enqueues
	if want := uirender.MakeRect(0, 0, 100, 100); entries[0].Damage != want {
		t.Errorf("damage = %+v, want %+v", entries[0].Damage, want)
	}

	q.Clear()
	if len(q.Entries()) != 0 {
		t.Error("queue not empty after Clear")
	}
}
