// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/clip"
	"github.com/gogpu/uirender/frame"
	"github.com/gogpu/uirender/pool"
)

// LightInfo carries the scene lighting parameters used when shadow casting
// is enabled on the encoding layer.
type LightInfo struct {
	LightRadius        float64
	AmbientShadowAlpha float64
	SpotShadowAlpha    float64
}

// renderTarget is the state of the currently bound target.
type renderTarget struct {
	// offscreenBuffer is nil when the frame (primary target) is bound.
	offscreenBuffer *pool.OffscreenBuffer

	viewportWidth  int
	viewportHeight int

	// orthoMatrix maps viewport pixels to normalized device coordinates.
	orthoMatrix uirender.Matrix

	bound bool
}

func (t *renderTarget) setViewport(width, height int) {
	t.viewportWidth = width
	t.viewportHeight = height
	t.orthoMatrix = uirender.Matrix{
		A: 2 / float64(width), B: 0, C: -1,
		D: 0, E: -2 / float64(height), F: 1,
	}
}

// BakedOpRenderer owns render target lifecycle during frame replay. It
// implements frame.Renderer: the frame builder calls Start/End around each
// target, and the dispatcher feeds it resolved Glops in between.
//
// Glops are collected per target in issue order; the device encoding layer
// drains them through Glops. With a null device the collected stream and
// the tracked state are the entire output, which is how the pipeline runs
// in tests.
type BakedOpRenderer struct {
	device DeviceHandle
	pool   *pool.Pool
	light  LightInfo

	// opaque frames skip the implicit backdrop clear.
	opaque bool

	target  renderTarget
	didDraw bool
	glops   []Glop
}

// Option configures a BakedOpRenderer.
type Option func(*BakedOpRenderer)

// WithOpaque marks the frame as fully covered by content, skipping the
// backdrop clear.
func WithOpaque(opaque bool) Option {
	return func(r *BakedOpRenderer) { r.opaque = opaque }
}

// WithLightInfo sets the scene lighting parameters.
func WithLightInfo(light LightInfo) Option {
	return func(r *BakedOpRenderer) { r.light = light }
}

// NewBakedOpRenderer creates a renderer over the given device handle and
// layer buffer pool.
func NewBakedOpRenderer(device DeviceHandle, bufferPool *pool.Pool, opts ...Option) *BakedOpRenderer {
	r := &BakedOpRenderer{device: device, pool: bufferPool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Light returns the scene lighting parameters.
func (r *BakedOpRenderer) Light() LightInfo { return r.light }

// Pool returns the layer buffer pool.
func (r *BakedOpRenderer) Pool() *pool.Pool { return r.pool }

// DidDraw reports whether any glop was issued since the last StartFrame.
func (r *BakedOpRenderer) DidDraw() bool { return r.didDraw }

// Glops returns the resolved draw stream in issue order.
func (r *BakedOpRenderer) Glops() []Glop { return r.glops }

// CurrentTarget returns the bound offscreen buffer, nil when the frame is
// bound or nothing is.
func (r *BakedOpRenderer) CurrentTarget() *pool.OffscreenBuffer {
	return r.target.offscreenBuffer
}

// StartFrame binds the primary target. Implements frame.Renderer.
func (r *BakedOpRenderer) StartFrame(width, height int, repaintRect uirender.Rect) error {
	if r.target.bound {
		return ErrTargetAlreadyBound
	}
	r.target = renderTarget{bound: true}
	r.target.setViewport(width, height)
	r.didDraw = false
	if !r.opaque {
		r.clearRect(repaintRect)
	}
	return nil
}

// EndFrame finishes the primary target. Implements frame.Renderer.
func (r *BakedOpRenderer) EndFrame(uirender.Rect) error {
	if !r.target.bound {
		return ErrNoTargetBound
	}
	r.target = renderTarget{}
	return nil
}

// StartTemporaryLayer allocates a save-layer buffer from the pool and
// binds it. Implements frame.Renderer.
func (r *BakedOpRenderer) StartTemporaryLayer(width, height int) (*pool.OffscreenBuffer, error) {
	if r.target.bound {
		return nil, ErrTargetAlreadyBound
	}
	buffer, err := r.pool.Get(width, height)
	if err != nil {
		return nil, err
	}
	r.target = renderTarget{offscreenBuffer: buffer, bound: true}
	r.target.setViewport(width, height)
	r.clearRect(uirender.MakeRect(0, 0, float64(width), float64(height)))
	return buffer, nil
}

// StartRepaintLayer binds an existing hardware layer buffer. Implements
// frame.Renderer.
func (r *BakedOpRenderer) StartRepaintLayer(buffer *pool.OffscreenBuffer, repaintRect uirender.Rect) error {
	if r.target.bound {
		return ErrTargetAlreadyBound
	}
	if buffer == nil {
		return ErrNoTargetBound
	}
	r.target = renderTarget{offscreenBuffer: buffer, bound: true}
	r.target.setViewport(buffer.ViewportWidth(), buffer.ViewportHeight())
	return nil
}

// EndLayer finishes the current offscreen target. Implements
// frame.Renderer.
func (r *BakedOpRenderer) EndLayer() error {
	if !r.target.bound || r.target.offscreenBuffer == nil {
		return ErrNoTargetBound
	}
	r.target = renderTarget{}
	return nil
}

// RenderGlop issues one resolved draw into the bound target: it joins the
// glop stream and its bounds dirty the target buffer.
func (r *BakedOpRenderer) RenderGlop(g Glop) error {
	if !r.target.bound {
		return ErrNoTargetBound
	}
	r.glops = append(r.glops, g)
	r.didDraw = true
	if buf := r.target.offscreenBuffer; buf != nil {
		viewport := uirender.MakeRect(0, 0,
			float64(r.target.viewportWidth), float64(r.target.viewportHeight))
		if dirty := g.Bounds.Intersect(viewport); !dirty.IsEmpty() {
			buf.Dirty(clip.RoundRect(dirty.RoundOut()))
		}
	}
	return nil
}

func (r *BakedOpRenderer) clearRect(rect uirender.Rect) {
	if rect.IsEmpty() {
		return
	}
	r.glops = append(r.glops, Glop{
		Mesh:      Mesh{Vertices: appendQuad(nil, rect), Indices: quadIndices(1)},
		Transform: uirender.Identity(),
		Fill:      Fill{Color: uirender.Transparent, Alpha: 1, Blend: uirender.BlendClear},
		Bounds:    rect,
	})
}

var _ frame.Renderer = (*BakedOpRenderer)(nil)
