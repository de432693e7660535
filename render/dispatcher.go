// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/frame"
	"github.com/gogpu/uirender/record"
)

// BakedOpDispatcher converts baked ops to Glops and issues them through a
// BakedOpRenderer. It implements frame.Dispatcher, completing the replay
// chain: frame.Builder -> Dispatcher -> Renderer.
type BakedOpDispatcher struct {
	renderer *BakedOpRenderer
}

// NewBakedOpDispatcher creates a dispatcher issuing into the given
// renderer.
func NewBakedOpDispatcher(renderer *BakedOpRenderer) *BakedOpDispatcher {
	return &BakedOpDispatcher{renderer: renderer}
}

// OnRectOp implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnRectOp(op *record.RectOp, state *frame.BakedOpState) {
	d.issue(GlopFromRect(op, state))
}

// OnLinesOp implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnLinesOp(op *record.LinesOp, state *frame.BakedOpState) {
	d.issue(GlopFromLines(op, state))
}

// OnBitmapOp implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnBitmapOp(op *record.BitmapOp, state *frame.BakedOpState) {
	d.issue(GlopFromBitmap(op, state))
}

// OnTextOp implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnTextOp(op *record.TextOp, state *frame.BakedOpState) {
	d.issue(GlopFromMergedText(frame.MergedOpList{States: []*frame.BakedOpState{state}}))
}

// OnSimpleRectsOp implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnSimpleRectsOp(op *record.SimpleRectsOp, state *frame.BakedOpState) {
	d.issue(GlopFromSimpleRects(op, state))
}

// OnLayerOp implements frame.Dispatcher. A one-shot save-layer buffer goes
// back to the pool right after compositing.
func (d *BakedOpDispatcher) OnLayerOp(op *record.LayerOp, state *frame.BakedOpState) {
	d.issue(GlopFromLayer(op, state))
	if op.DestroyAfterUse && op.Layer.Buffer != nil {
		d.renderer.Pool().PutOrDelete(op.Layer.Buffer)
		op.Layer.Buffer = nil
	}
}

// OnMergedBitmapOps implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnMergedBitmapOps(list frame.MergedOpList) {
	d.issue(GlopFromMergedBitmaps(list))
}

// OnMergedTextOps implements frame.Dispatcher.
func (d *BakedOpDispatcher) OnMergedTextOps(list frame.MergedOpList) {
	d.issue(GlopFromMergedText(list))
}

func (d *BakedOpDispatcher) issue(g Glop) {
	if err := d.renderer.RenderGlop(g); err != nil {
		uirender.Logger().Error("render: dropping glop", "error", err)
	}
}

var _ frame.Dispatcher = (*BakedOpDispatcher)(nil)
