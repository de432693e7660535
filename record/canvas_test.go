package record

import (
	"image"
	"testing"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
)

func rectEq(t *testing.T, got uirender.Rect, l, top, r, b float64) {
	t.Helper()
	if got.Left != l || got.Top != top || got.Right != r || got.Bottom != b {
		t.Errorf("rect = (%v,%v,%v,%v), want (%v,%v,%v,%v)",
			got.Left, got.Top, got.Right, got.Bottom, l, top, r, b)
	}
}

func TestDrawRectRecordsBoundsAndClip(t *testing.T) {
	c := NewCanvas(100, 200)
	c.DrawRect(10, 20, 90, 180, uirender.NewPaint())
	list := c.FinishRecording()

	if got := len(list.Ops()); got != 1 {
		t.Fatalf("recorded %d ops, want 1", got)
	}
	op, ok := list.OpAt(0).(*RectOp)
	if !ok {
		t.Fatalf("recorded %T, want *RectOp", list.OpAt(0))
	}
	rectEq(t, op.UnmappedBounds, 10, 20, 90, 180)
	rectEq(t, op.LocalClipRect(), 0, 0, 100, 200)
	if !op.LocalMatrix.IsIdentity() {
		t.Errorf("local matrix = %+v, want identity", op.LocalMatrix)
	}
}

func TestDrawRectUnderTranslate(t *testing.T) {
	c := NewCanvas(100, 100)
	c.Save()
	c.Translate(30, 40)
	c.DrawRect(0, 0, 10, 10, nil)
	c.Restore()
	list := c.FinishRecording()

	op := list.OpAt(0).(*RectOp)
	rectEq(t, op.UnmappedBounds, 0, 0, 10, 10)
	if want := uirender.Translate(30, 40); op.LocalMatrix != want {
		t.Errorf("local matrix = %+v, want %+v", op.LocalMatrix, want)
	}
}

func TestDrawLinesTrimsPartialSegment(t *testing.T) {
	c := NewCanvas(100, 100)
	// 7 floats: one full segment plus a dangling partial one
	c.DrawLines([]float64{10, 10, 50, 50, 70, 70, 99}, nil)
	list := c.FinishRecording()

	op := list.OpAt(0).(*LinesOp)
	if got := len(op.Points); got != 4 {
		t.Fatalf("len(Points) = %d, want 4", got)
	}
	// bounds of the kept points, outset by max(strokeWidth, 1)/2
	rectEq(t, op.UnmappedBounds, 9.5, 9.5, 50.5, 50.5)
}

func TestDrawLinesStrokeWidthOutset(t *testing.T) {
	c := NewCanvas(100, 100)
	paint := uirender.NewPaint()
	paint.Style = uirender.PaintStyleStroke
	paint.StrokeWidth = 4
	c.DrawLines([]float64{10, 10, 50, 50}, paint)
	list := c.FinishRecording()

	op := list.OpAt(0).(*LinesOp)
	rectEq(t, op.UnmappedBounds, 8, 8, 52, 52)
}

func TestDrawLinesTooFewPoints(t *testing.T) {
	c := NewCanvas(100, 100)
	c.DrawLines([]float64{10, 10, 50}, nil)
	if list := c.FinishRecording(); !list.IsEmpty() {
		t.Errorf("recorded %d ops, want none", len(list.Ops()))
	}
}

func TestSaveLayerAlphaRecordsThreeOps(t *testing.T) {
	c := NewCanvas(200, 200)
	count := c.SaveLayerAlpha(10, 20, 190, 180, 0.5)
	c.DrawRect(0, 0, 800, 800, uirender.NewPaint())
	c.RestoreToCount(count)
	list := c.FinishRecording()

	if got := len(list.Ops()); got != 3 {
		t.Fatalf("recorded %d ops, want 3", got)
	}

	begin, ok := list.OpAt(0).(*BeginLayerOp)
	if !ok {
		t.Fatalf("op 0 is %T, want *BeginLayerOp", list.OpAt(0))
	}
	rectEq(t, begin.UnmappedBounds, 10, 20, 190, 180)
	if !begin.LocalMatrix.IsIdentity() {
		t.Errorf("begin matrix = %+v, want identity", begin.LocalMatrix)
	}
	if begin.Paint == nil || begin.Paint.Alpha() != 0.5 {
		t.Errorf("begin paint alpha = %v, want 0.5", begin.Paint.Alpha())
	}

	rect, ok := list.OpAt(1).(*RectOp)
	if !ok {
		t.Fatalf("op 1 is %T, want *RectOp", list.OpAt(1))
	}
	// content records in layer space: clip is the layer viewport, and the
	// transform shifts layer content to the origin
	rectEq(t, rect.LocalClipRect(), 0, 0, 180, 160)
	if want := uirender.Translate(-10, -20); rect.LocalMatrix != want {
		t.Errorf("rect matrix = %+v, want %+v", rect.LocalMatrix, want)
	}

	if _, ok := list.OpAt(2).(*EndLayerOp); !ok {
		t.Fatalf("op 2 is %T, want *EndLayerOp", list.OpAt(2))
	}
}

func TestSaveLayerTrimmedByClipKeepsOffset(t *testing.T) {
	c := NewCanvas(200, 200)
	c.ClipRect(50, 0, 200, 200, clip.OpIntersect)
	count := c.SaveLayerAlpha(10, 20, 190, 180, 0.5)
	c.DrawRect(10, 20, 190, 180, nil)
	c.RestoreToCount(count)
	list := c.FinishRecording()

	if got := len(list.Ops()); got != 3 {
		t.Fatalf("recorded %d ops, want 3", got)
	}
	rect := list.OpAt(1).(*RectOp)
	// trimming the visible bounds narrows the layer clip only; content
	// keeps recording relative to the requested layer origin
	if want := uirender.Translate(-10, -20); rect.LocalMatrix != want {
		t.Errorf("rect matrix = %+v, want %+v", rect.LocalMatrix, want)
	}
	rectEq(t, rect.LocalClipRect(), 40, 0, 180, 160)
}

func TestSaveLayerClippedOutRecordsNothing(t *testing.T) {
	c := NewCanvas(200, 200)
	c.Save()
	c.ClipRect(0, 0, 50, 50, clip.OpIntersect)
	count := c.SaveLayerAlpha(100, 100, 180, 180, 0.5)
	c.DrawRect(100, 100, 180, 180, uirender.NewPaint())
	c.RestoreToCount(count)
	c.Restore()
	list := c.FinishRecording()

	// no BeginLayerOp/EndLayerOp; the draw is recorded with an empty clip
	for _, op := range list.Ops() {
		switch op.Kind() {
		case OpBeginLayer, OpEndLayer:
			t.Errorf("recorded %v for a fully clipped layer", op.Kind())
		}
	}
	if len(list.Ops()) == 1 {
		if got := list.OpAt(0).(*RectOp).LocalClipRect(); !got.IsEmpty() {
			t.Errorf("clip = %+v, want empty", got)
		}
	}
}

func TestInsertReorderBarrierChunks(t *testing.T) {
	c := NewCanvas(100, 100)
	c.DrawRect(0, 0, 10, 10, nil)
	c.InsertReorderBarrier(true)
	c.InsertReorderBarrier(false)
	c.InsertReorderBarrier(false)
	c.InsertReorderBarrier(true)
	c.DrawRect(0, 0, 10, 10, nil)
	c.InsertReorderBarrier(false)
	list := c.FinishRecording()

	chunks := list.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].BeginOpIndex != 0 || chunks[0].EndOpIndex != 1 || chunks[0].ReorderChildren {
		t.Errorf("chunk 0 = %+v, want [0,1) in order", chunks[0])
	}
	if chunks[1].BeginOpIndex != 1 || chunks[1].EndOpIndex != 2 || !chunks[1].ReorderChildren {
		t.Errorf("chunk 1 = %+v, want [1,2) reordering", chunks[1])
	}
}

func TestPaintInterning(t *testing.T) {
	c := NewCanvas(100, 100)
	p1 := uirender.NewPaint()
	p1.Color = uirender.RGB(1, 0, 0)
	p2 := uirender.NewPaint()
	p2.Color = uirender.RGB(1, 0, 0)
	c.DrawRect(0, 0, 10, 10, p1)
	c.DrawRect(20, 20, 30, 30, p2)
	list := c.FinishRecording()

	a := list.OpAt(0).Base().Paint
	b := list.OpAt(1).Base().Paint
	if a != b {
		t.Error("equal paints interned to different pointers")
	}
	if a == p1 {
		t.Error("interned paint aliases the caller's paint")
	}
}

func TestClipSerializationShared(t *testing.T) {
	c := NewCanvas(100, 100)
	c.DrawRect(0, 0, 10, 10, nil)
	c.DrawRect(20, 20, 30, 30, nil)
	c.ClipRect(0, 0, 50, 50, clip.OpIntersect)
	c.DrawRect(0, 0, 10, 10, nil)
	list := c.FinishRecording()

	if list.OpAt(0).Base().LocalClip != list.OpAt(1).Base().LocalClip {
		t.Error("ops under an unchanged clip got different clip snapshots")
	}
	if list.OpAt(1).Base().LocalClip == list.OpAt(2).Base().LocalClip {
		t.Error("clip snapshot survived a clip mutation")
	}
}

func TestRestoreWithoutSavePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("over-restore did not panic")
		}
	}()
	c := NewCanvas(10, 10)
	c.Restore()
}

func TestRecordAfterFinishPanics(t *testing.T) {
	c := NewCanvas(10, 10)
	c.FinishRecording()
	defer func() {
		if recover() == nil {
			t.Error("recording after FinishRecording did not panic")
		}
	}()
	c.DrawRect(0, 0, 5, 5, nil)
}

func TestDrawBitmapCarriesPaint(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	p := uirender.NewPaint()
	p.Color = uirender.RGBA(1, 1, 1, 0.5)
	c := NewCanvas(100, 100)
	c.DrawBitmap(img, 5, 5, p)
	list := c.FinishRecording()

	op := list.OpAt(0).(*BitmapOp)
	if op.Paint == nil || op.Paint.Alpha() != 0.5 {
		t.Errorf("bitmap paint = %+v, want alpha 0.5", op.Paint)
	}
	if want := uirender.Translate(5, 5); op.LocalMatrix != want {
		t.Errorf("bitmap matrix = %+v, want %+v", op.LocalMatrix, want)
	}
}

func TestDrawRenderNodeTracksChildren(t *testing.T) {
	child := NewRenderNode("child")
	props := child.MutateStagingProperties()
	props.Left, props.Top = 10, 20
	props.Width, props.Height = 50, 60

	childCanvas := NewCanvas(50, 60)
	childCanvas.DrawRect(0, 0, 50, 60, nil)
	child.SetStagingDisplayList(childCanvas.FinishRecording())

	c := NewCanvas(200, 200)
	c.DrawRenderNode(child)
	list := c.FinishRecording()

	if got := len(list.Children()); got != 1 {
		t.Fatalf("got %d children, want 1", got)
	}
	op := list.Children()[0]
	if op.Node != child {
		t.Error("child op references wrong node")
	}
	rectEq(t, op.UnmappedBounds, 10, 20, 60, 80)
	if list.ProjectionReceiveIndex() != -1 {
		t.Errorf("projection receive index = %d, want -1", list.ProjectionReceiveIndex())
	}
}

func TestDrawRenderNodeSkipsEmptyChild(t *testing.T) {
	c := NewCanvas(100, 100)
	c.DrawRenderNode(NewRenderNode("empty"))
	list := c.FinishRecording()
	if len(list.Children()) != 0 || len(list.Ops()) != 0 {
		t.Error("empty child was recorded")
	}
}

func TestProjectionReceiverIndex(t *testing.T) {
	background := NewRenderNode("background")
	bp := background.MutateStagingProperties()
	bp.Width, bp.Height = 100, 100
	bp.ProjectionReceiver = true
	bc := NewCanvas(100, 100)
	bc.DrawRect(0, 0, 100, 100, nil)
	background.SetStagingDisplayList(bc.FinishRecording())

	c := NewCanvas(200, 200)
	c.DrawRenderNode(background)
	list := c.FinishRecording()

	if got := list.ProjectionReceiveIndex(); got != 0 {
		t.Errorf("projection receive index = %d, want 0", got)
	}
}
