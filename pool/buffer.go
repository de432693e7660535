// Package pool implements recycling of offscreen render buffers. Layer
// textures are expensive to allocate, so retired buffers are kept in a
// size-bounded pool and handed back out for layers of a similar size.
//
// Texture dimensions are snapped up to 64 pixel multiples, so a layer that
// resizes by a few pixels per frame keeps hitting the same pooled texture.
package pool

import "github.com/gogpu/uirender/clip"

// idealDimensionGranularity is the snapping unit for texture dimensions.
const idealDimensionGranularity = 64

// ComputeIdealDimension rounds a layer dimension up to the allocation
// granularity. The result is always at least one granule, so degenerate
// 1 pixel layers still get a usable texture.
func ComputeIdealDimension(dimension int) int {
	if dimension <= 0 {
		return idealDimensionGranularity
	}
	granules := (dimension + idealDimensionGranularity - 1) / idealDimensionGranularity
	return granules * idealDimensionGranularity
}

// Texture is the pool's view of a device texture.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int
	// Height returns the texture height in pixels.
	Height() int
	// Destroy frees the device resources.
	Destroy()
}

// TextureAllocator creates textures for offscreen buffers. Implemented by
// the render package over a real device, and by test fakes.
type TextureAllocator interface {
	CreateLayerTexture(width, height int) (Texture, error)
}

// OffscreenBuffer is an offscreen render target: a (possibly oversized)
// pooled texture plus the viewport actually rendered into it.
type OffscreenBuffer struct {
	// Texture backs the buffer. Its dimensions are ideal (64 multiples)
	// and may exceed the viewport.
	Texture Texture

	viewportWidth  int
	viewportHeight int

	// AccumulatedDirty tracks the content area rendered since the buffer
	// was (re)issued, in viewport space. Cleared when the buffer returns
	// to the pool.
	AccumulatedDirty *clip.Region
}

// ViewportWidth returns the rendered width in pixels.
func (b *OffscreenBuffer) ViewportWidth() int { return b.viewportWidth }

// ViewportHeight returns the rendered height in pixels.
func (b *OffscreenBuffer) ViewportHeight() int { return b.viewportHeight }

// SetViewport records the area of the texture in use.
func (b *OffscreenBuffer) SetViewport(width, height int) {
	b.viewportWidth = width
	b.viewportHeight = height
}

// Dirty accumulates a rendered area into the buffer's dirty region.
func (b *OffscreenBuffer) Dirty(area clip.IntRect) {
	b.AccumulatedDirty = b.AccumulatedDirty.Union(clip.NewRegionFromRect(area))
}

// SizeInBytes returns the texture footprint, assuming 4 bytes per pixel.
func (b *OffscreenBuffer) SizeInBytes() uint64 {
	if b.Texture == nil {
		return 0
	}
	return uint64(b.Texture.Width()) * uint64(b.Texture.Height()) * 4
}
