// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/frame"
	"github.com/gogpu/uirender/pool"
	"github.com/gogpu/uirender/record"
)

func bakedRect(left, top, right, bottom float64, paint *uirender.Paint) (*record.RectOp, *frame.BakedOpState) {
	op := &record.RectOp{BaseOp: record.BaseOp{
		UnmappedBounds: uirender.MakeRect(left, top, right, bottom),
		LocalMatrix:    uirender.Identity(),
		Paint:          paint,
	}}
	state := &frame.BakedOpState{
		State: frame.ResolvedState{
			Transform:     uirender.Identity(),
			ClippedBounds: op.UnmappedBounds,
		},
		Alpha: 1,
		Op:    op,
	}
	return op, state
}

func TestGlopFromRect(t *testing.T) {
	paint := uirender.NewPaint()
	paint.Color = uirender.RGBA(1, 0, 0, 0.5)
	op, state := bakedRect(10, 20, 30, 40, paint)
	g := GlopFromRect(op, state)

	if got := g.Mesh.QuadCount(); got != 1 {
		t.Errorf("quad count = %d, want 1", got)
	}
	if len(g.Mesh.Indices) != 6 {
		t.Errorf("index count = %d, want 6", len(g.Mesh.Indices))
	}
	if g.Fill.Color != paint.Color {
		t.Errorf("fill color = %+v, want %+v", g.Fill.Color, paint.Color)
	}
	if g.Fill.Alpha != 0.5 {
		t.Errorf("fill alpha = %v, want 0.5", g.Fill.Alpha)
	}
	if g.Bounds != state.State.ClippedBounds {
		t.Errorf("bounds = %+v, want %+v", g.Bounds, state.State.ClippedBounds)
	}
	if !g.ScissorRect.IsEmpty() {
		t.Errorf("scissor = %+v, want empty for unclipped op", g.ScissorRect)
	}
}

func TestGlopAlphaCombinesStateAlpha(t *testing.T) {
	paint := uirender.NewPaint()
	paint.Color = uirender.RGBA(0, 0, 0, 0.5)
	op, state := bakedRect(0, 0, 10, 10, paint)
	state.Alpha = 0.5
	g := GlopFromRect(op, state)
	if g.Fill.Alpha != 0.25 {
		t.Errorf("fill alpha = %v, want 0.25", g.Fill.Alpha)
	}
}

func TestGlopNilPaintDefaults(t *testing.T) {
	op, state := bakedRect(0, 0, 10, 10, nil)
	g := GlopFromRect(op, state)
	if g.Fill.Color != uirender.Black || g.Fill.Alpha != 1 || g.Fill.Blend != uirender.BlendSrcOver {
		t.Errorf("default fill = %+v", g.Fill)
	}
}

func TestGlopFromLayerTexCoords(t *testing.T) {
	buffer := &pool.OffscreenBuffer{Texture: &stubTexture{width: 128, height: 256}}
	buffer.SetViewport(100, 200)

	op := &record.LayerOp{
		BaseOp: record.BaseOp{
			UnmappedBounds: uirender.MakeRect(0, 0, 100, 200),
			LocalMatrix:    uirender.Identity(),
		},
		Layer: &record.LayerHandle{Buffer: buffer},
		Alpha: 0.5,
	}
	state := &frame.BakedOpState{
		State: frame.ResolvedState{
			Transform:     uirender.Identity(),
			ClippedBounds: op.UnmappedBounds,
		},
		Alpha: 1,
		Op:    op,
	}
	g := GlopFromLayer(op, state)

	// texture is oversized; coordinates stop at the rendered viewport
	maxU, maxV := 100.0/128.0, 200.0/256.0
	tc := g.Mesh.TexCoords
	if len(tc) != 8 {
		t.Fatalf("texcoord count = %d, want 8", len(tc))
	}
	if tc[2] != maxU || tc[7] != maxV {
		t.Errorf("texcoords = %v, want max u=%v v=%v", tc, maxU, maxV)
	}
	if g.Fill.Alpha != 0.5 {
		t.Errorf("fill alpha = %v, want layer alpha 0.5", g.Fill.Alpha)
	}
}

func TestGlopFromMergedBitmaps(t *testing.T) {
	var states []*frame.BakedOpState
	for i := 0; i < 3; i++ {
		off := float64(i * 40)
		op := &record.BitmapOp{BaseOp: record.BaseOp{
			UnmappedBounds: uirender.MakeRect(0, 0, 20, 20),
			LocalMatrix:    uirender.Identity(),
		}}
		states = append(states, &frame.BakedOpState{
			State: frame.ResolvedState{
				Transform:     uirender.Translate(off, 0),
				ClippedBounds: uirender.MakeRect(off, 0, off+20, 20),
			},
			Alpha: 1,
			Op:    op,
		})
	}
	g := GlopFromMergedBitmaps(frame.MergedOpList{States: states})

	if got := g.Mesh.QuadCount(); got != 3 {
		t.Errorf("quad count = %d, want 3", got)
	}
	if !g.Transform.IsIdentity() {
		t.Errorf("transform = %+v, want identity (quads are pre-mapped)", g.Transform)
	}
	// second quad is mapped by its op transform
	if g.Mesh.Vertices[8] != 40 {
		t.Errorf("second quad left = %v, want 40", g.Mesh.Vertices[8])
	}
	if want := uirender.MakeRect(0, 0, 100, 20); g.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", g.Bounds, want)
	}
	if !g.ScissorRect.IsEmpty() {
		t.Errorf("scissor = %+v, want empty without clipped sides", g.ScissorRect)
	}
}

func TestGlopFromMergedBitmapsScissor(t *testing.T) {
	op := &record.BitmapOp{BaseOp: record.BaseOp{
		UnmappedBounds: uirender.MakeRect(0, 0, 20, 20),
		LocalMatrix:    uirender.Identity(),
	}}
	state := &frame.BakedOpState{
		State: frame.ResolvedState{
			Transform:     uirender.Identity(),
			ClippedBounds: uirender.MakeRect(0, 0, 20, 20),
		},
		Alpha: 1,
		Op:    op,
	}
	list := frame.MergedOpList{
		States:        []*frame.BakedOpState{state},
		ClipSideFlags: frame.ClipSideRight,
		Clip:          uirender.MakeRect(0, 0, 18, 0),
	}
	g := GlopFromMergedBitmaps(list)
	if g.ScissorRect != list.Clip {
		t.Errorf("scissor = %+v, want merged clip %+v", g.ScissorRect, list.Clip)
	}
}

func TestQuadIndices(t *testing.T) {
	got := quadIndices(2)
	want := []uint16{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %d, want %d", i, got[i], want[i])
		}
	}
}
