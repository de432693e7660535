// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/frame"
	"github.com/gogpu/uirender/record"
)

// Mesh is the geometry of one draw: interleaved x,y vertex pairs, optional
// parallel u,v texture coordinates, and an optional index list. An empty
// index list means non-indexed drawing in vertex order.
type Mesh struct {
	Vertices  []float64
	TexCoords []float64
	Indices   []uint16
}

// QuadCount returns the number of quads for an indexed quad mesh.
func (m *Mesh) QuadCount() int { return len(m.Vertices) / 8 }

// Fill is the resolved paint state of a draw.
type Fill struct {
	Color uirender.Color
	// Alpha is the final alpha: paint alpha times snapshot alpha.
	Alpha float64
	Blend uirender.BlendMode
}

// Glop is a fully resolved draw primitive: everything the device encoding
// layer needs, with no references back into the recording.
type Glop struct {
	Mesh      Mesh
	Transform uirender.Matrix
	Fill      Fill
	// Bounds are the device bounds the draw may touch, used for dirty
	// region tracking.
	Bounds uirender.Rect
	// ScissorRect limits the draw when non-empty.
	ScissorRect uirender.Rect
}

func resolveFill(paint *uirender.Paint, stateAlpha float64) Fill {
	f := Fill{Color: uirender.Black, Alpha: stateAlpha, Blend: uirender.BlendSrcOver}
	if paint != nil {
		f.Color = paint.Color
		f.Alpha = paint.Color.A * stateAlpha
		f.Blend = paint.Blend
	}
	return f
}

func scissorFor(state *frame.BakedOpState) uirender.Rect {
	if state.State.RequiresClip() {
		return state.State.ClipRect()
	}
	return uirender.Rect{}
}

func appendQuad(vertices []float64, r uirender.Rect) []float64 {
	return append(vertices,
		r.Left, r.Top,
		r.Right, r.Top,
		r.Left, r.Bottom,
		r.Right, r.Bottom)
}

// quadIndices returns the index list drawing n quads as 2n triangles.
func quadIndices(n int) []uint16 {
	indices := make([]uint16, 0, n*6)
	for i := 0; i < n; i++ {
		base := uint16(i * 4)
		indices = append(indices, base, base+1, base+2, base+2, base+1, base+3)
	}
	return indices
}

// GlopFromRect resolves a rectangle op.
func GlopFromRect(op *record.RectOp, state *frame.BakedOpState) Glop {
	return Glop{
		Mesh:        Mesh{Vertices: appendQuad(nil, op.UnmappedBounds), Indices: quadIndices(1)},
		Transform:   state.State.Transform,
		Fill:        resolveFill(op.Paint, state.Alpha),
		Bounds:      state.State.ClippedBounds,
		ScissorRect: scissorFor(state),
	}
}

// GlopFromLines resolves a line batch op. Vertices stay a line list; the
// encoding layer expands them against the stroke width.
func GlopFromLines(op *record.LinesOp, state *frame.BakedOpState) Glop {
	return Glop{
		Mesh:        Mesh{Vertices: append([]float64(nil), op.Points...)},
		Transform:   state.State.Transform,
		Fill:        resolveFill(op.Paint, state.Alpha),
		Bounds:      state.State.ClippedBounds,
		ScissorRect: scissorFor(state),
	}
}

// GlopFromBitmap resolves a single bitmap op to a textured unit quad.
func GlopFromBitmap(op *record.BitmapOp, state *frame.BakedOpState) Glop {
	return Glop{
		Mesh: Mesh{
			Vertices:  appendQuad(nil, op.UnmappedBounds),
			TexCoords: appendQuad(nil, uirender.MakeRect(0, 0, 1, 1)),
			Indices:   quadIndices(1),
		},
		Transform:   state.State.Transform,
		Fill:        resolveFill(op.Paint, state.Alpha),
		Bounds:      state.State.ClippedBounds,
		ScissorRect: scissorFor(state),
	}
}

// GlopFromSimpleRects resolves a pre-transformed rect fill.
func GlopFromSimpleRects(op *record.SimpleRectsOp, state *frame.BakedOpState) Glop {
	n := len(op.Vertices) / 8
	return Glop{
		Mesh:        Mesh{Vertices: append([]float64(nil), op.Vertices...), Indices: quadIndices(n)},
		Transform:   state.State.Transform,
		Fill:        resolveFill(op.Paint, state.Alpha),
		Bounds:      state.State.ClippedBounds,
		ScissorRect: scissorFor(state),
	}
}

// GlopFromLayer resolves compositing of an offscreen buffer. Texture
// coordinates account for the buffer's texture being larger than its
// rendered viewport.
func GlopFromLayer(op *record.LayerOp, state *frame.BakedOpState) Glop {
	maxU, maxV := 1.0, 1.0
	if buf := op.Layer.Buffer; buf != nil && buf.Texture != nil {
		if tw := buf.Texture.Width(); tw > 0 {
			maxU = float64(buf.ViewportWidth()) / float64(tw)
		}
		if th := buf.Texture.Height(); th > 0 {
			maxV = float64(buf.ViewportHeight()) / float64(th)
		}
	}
	fill := resolveFill(op.Paint, state.Alpha)
	fill.Alpha = op.Alpha * state.Alpha
	return Glop{
		Mesh: Mesh{
			Vertices:  appendQuad(nil, op.UnmappedBounds),
			TexCoords: appendQuad(nil, uirender.MakeRect(0, 0, maxU, maxV)),
			Indices:   quadIndices(1),
		},
		Transform:   state.State.Transform,
		Fill:        fill,
		Bounds:      state.State.ClippedBounds,
		ScissorRect: scissorFor(state),
	}
}

// GlopFromMergedBitmaps builds one multi-quad mesh for a merged bitmap
// group. Each quad is pre-mapped to device space by its op's transform, so
// the glop draws with identity.
func GlopFromMergedBitmaps(list frame.MergedOpList) Glop {
	var vertices, texCoords []float64
	var bounds uirender.Rect
	for i, state := range list.States {
		op := state.Op.(*record.BitmapOp)
		mapped := state.State.Transform.MapRect(op.UnmappedBounds)
		vertices = appendQuad(vertices, mapped)
		texCoords = appendQuad(texCoords, uirender.MakeRect(0, 0, 1, 1))
		if i == 0 {
			bounds = state.State.ClippedBounds
		} else {
			bounds = bounds.Union(state.State.ClippedBounds)
		}
	}
	g := Glop{
		Mesh:      Mesh{Vertices: vertices, TexCoords: texCoords, Indices: quadIndices(len(list.States))},
		Transform: uirender.Identity(),
		Fill:      resolveFill(list.States[0].Op.Base().Paint, list.States[0].Alpha),
		Bounds:    bounds,
	}
	if list.ClipSideFlags != frame.ClipSideNone {
		g.ScissorRect = list.Clip
	}
	return g
}

// GlopFromMergedText builds one mesh of glyph origins for a merged text
// group: one vertex per glyph, pre-mapped to device space. The encoding
// layer resolves glyph quads against the atlas.
func GlopFromMergedText(list frame.MergedOpList) Glop {
	var vertices []float64
	var bounds uirender.Rect
	for i, state := range list.States {
		op := state.Op.(*record.TextOp)
		for _, pos := range op.Positions {
			p := state.State.Transform.TransformPoint(uirender.Pt(
				op.X+fixedToFloat(pos.X),
				op.Y+fixedToFloat(pos.Y)))
			vertices = append(vertices, p.X, p.Y)
		}
		if i == 0 {
			bounds = state.State.ClippedBounds
		} else {
			bounds = bounds.Union(state.State.ClippedBounds)
		}
	}
	g := Glop{
		Mesh:      Mesh{Vertices: vertices},
		Transform: uirender.Identity(),
		Fill:      resolveFill(list.States[0].Op.Base().Paint, list.States[0].Alpha),
		Bounds:    bounds,
	}
	if list.ClipSideFlags != frame.ClipSideNone {
		g.ScissorRect = list.Clip
	}
	return g
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
