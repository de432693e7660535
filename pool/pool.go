package pool

import (
	"fmt"
	"sort"

	"github.com/gogpu/uirender"
)

// DefaultMaxSize is the default pool budget in bytes.
const DefaultMaxSize = 4 << 20

// Option configures a Pool.
type Option func(*Pool)

// WithMaxSize sets the pool budget in bytes.
func WithMaxSize(maxSize uint64) Option {
	return func(p *Pool) { p.maxSize = maxSize }
}

// Pool recycles offscreen buffers. Idle buffers are kept sorted by texture
// size; a request is served by the first idle buffer whose texture exactly
// matches the request's ideal dimensions, otherwise a new texture is
// allocated. The total idle footprint never exceeds the budget.
//
// Pool is not safe for concurrent use; each rendering thread owns one.
type Pool struct {
	allocator TextureAllocator
	entries   []entry
	size      uint64
	maxSize   uint64
}

type entry struct {
	width, height int // ideal (texture) dimensions
	buffer        *OffscreenBuffer
}

func (e entry) less(o entry) bool {
	if e.width != o.width {
		return e.width < o.width
	}
	return e.height < o.height
}

// New creates an empty pool over the given allocator.
func New(allocator TextureAllocator, opts ...Option) *Pool {
	p := &Pool{
		allocator: allocator,
		maxSize:   DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Count returns the number of idle buffers.
func (p *Pool) Count() int { return len(p.entries) }

// Size returns the total idle footprint in bytes.
func (p *Pool) Size() uint64 { return p.size }

// MaxSize returns the pool budget in bytes.
func (p *Pool) MaxSize() uint64 { return p.maxSize }

// Get returns a buffer for a viewport of the given size, reusing an idle
// buffer when one with matching ideal texture dimensions exists.
func (p *Pool) Get(width, height int) (*OffscreenBuffer, error) {
	idealW := ComputeIdealDimension(width)
	idealH := ComputeIdealDimension(height)

	want := entry{width: idealW, height: idealH}
	i := sort.Search(len(p.entries), func(i int) bool {
		return !p.entries[i].less(want)
	})
	if i < len(p.entries) && p.entries[i].width == idealW && p.entries[i].height == idealH {
		buf := p.entries[i].buffer
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
		p.size -= buf.SizeInBytes()
		buf.SetViewport(width, height)
		return buf, nil
	}

	tex, err := p.allocator.CreateLayerTexture(idealW, idealH)
	if err != nil {
		return nil, fmt.Errorf("pool: allocate %dx%d texture: %w", idealW, idealH, err)
	}
	buf := &OffscreenBuffer{Texture: tex}
	buf.SetViewport(width, height)
	return buf, nil
}

// PutOrDelete returns a buffer to the pool, or destroys it when it alone
// would meet or exceed the budget. Pooling clears the buffer's accumulated
// dirty region; the next user starts from a blank slate.
func (p *Pool) PutOrDelete(buffer *OffscreenBuffer) {
	if buffer == nil {
		return
	}
	size := buffer.SizeInBytes()
	if size >= p.maxSize {
		destroy(buffer)
		return
	}

	// Evict smallest entries until the new buffer fits.
	for p.size+size > p.maxSize && len(p.entries) > 0 {
		victim := p.entries[0].buffer
		p.entries = p.entries[1:]
		p.size -= victim.SizeInBytes()
		uirender.Logger().Debug("pool: evicting buffer",
			"width", victim.Texture.Width(),
			"height", victim.Texture.Height(),
			"bytes", victim.SizeInBytes())
		destroy(victim)
	}

	buffer.AccumulatedDirty = nil
	e := entry{
		width:  buffer.Texture.Width(),
		height: buffer.Texture.Height(),
		buffer: buffer,
	}
	i := sort.Search(len(p.entries), func(i int) bool {
		return !p.entries[i].less(e)
	})
	p.entries = append(p.entries, entry{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = e
	p.size += size
}

// Resize adjusts a buffer to a new viewport. When the ideal texture
// dimensions are unchanged the buffer is updated in place; otherwise the
// old buffer is pooled and a replacement issued.
func (p *Pool) Resize(buffer *OffscreenBuffer, width, height int) (*OffscreenBuffer, error) {
	if buffer.Texture != nil &&
		buffer.Texture.Width() == ComputeIdealDimension(width) &&
		buffer.Texture.Height() == ComputeIdealDimension(height) {
		buffer.SetViewport(width, height)
		return buffer, nil
	}
	p.PutOrDelete(buffer)
	return p.Get(width, height)
}

// Clear destroys every idle buffer.
func (p *Pool) Clear() {
	for _, e := range p.entries {
		destroy(e.buffer)
	}
	p.entries = nil
	p.size = 0
}

func destroy(buffer *OffscreenBuffer) {
	if buffer.Texture != nil {
		buffer.Texture.Destroy()
		buffer.Texture = nil
	}
}
