package uirender

// PaintStyle specifies whether geometry is filled, stroked, or both.
type PaintStyle uint8

const (
	// PaintStyleFill fills the interior of the geometry.
	PaintStyleFill PaintStyle = iota
	// PaintStyleStroke strokes the outline of the geometry.
	PaintStyleStroke
	// PaintStyleFillAndStroke fills and then strokes.
	PaintStyleFillAndStroke
)

// BlendMode specifies how source pixels combine with the destination.
// Only the modes the pipeline actually dispatches are defined; anything
// more exotic belongs to the GPU encoding layer below the Glop boundary.
type BlendMode uint8

const (
	// BlendSrcOver composites source over destination (the default).
	BlendSrcOver BlendMode = iota
	// BlendSrc replaces the destination with the source.
	BlendSrc
	// BlendClear clears the destination to transparent.
	BlendClear
	// BlendDstIn keeps destination pixels covered by the source.
	BlendDstIn
	// BlendMultiply multiplies source and destination.
	BlendMultiply
)

// blendModeNames maps BlendMode values to their string representation.
var blendModeNames = [...]string{
	BlendSrcOver:  "SrcOver",
	BlendSrc:      "Src",
	BlendClear:    "Clear",
	BlendDstIn:    "DstIn",
	BlendMultiply: "Multiply",
}

// String returns the string representation of a BlendMode.
func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return "Unknown"
}

// Paint carries the styling state captured with a recorded op: color,
// fill/stroke style, stroke width, blend mode, and the anti-alias flag.
//
// Paint contains no reference-typed fields so values are comparable; the
// recording canvas relies on this to intern paints, and the batcher relies
// on interned pointers for its fast "same paint" test (see Equivalent).
type Paint struct {
	// Color is the source color including alpha.
	Color Color

	// Style selects fill, stroke, or both.
	Style PaintStyle

	// StrokeWidth is the stroke width in local units. A width of 0 is
	// treated as hairline (minimum 1 device pixel) by consumers.
	StrokeWidth float64

	// Blend is the compositing mode.
	Blend BlendMode

	// AntiAlias enables edge anti-aliasing.
	AntiAlias bool
}

// NewPaint creates a Paint with default values: opaque black fill,
// 1px strokes, source-over blending, anti-aliasing on.
func NewPaint() *Paint {
	return &Paint{
		Color:       Black,
		Style:       PaintStyleFill,
		StrokeWidth: 1.0,
		Blend:       BlendSrcOver,
		AntiAlias:   true,
	}
}

// Equivalent reports whether two paints would produce identical output.
// Nil is treated as the default paint. Pointer-equal paints are trivially
// equivalent; interning in the recording canvas makes that the common case.
func (p *Paint) Equivalent(o *Paint) bool {
	if p == o {
		return true
	}
	a, b := p, o
	if a == nil {
		a = &defaultPaint
	}
	if b == nil {
		b = &defaultPaint
	}
	return *a == *b
}

// Alpha returns the paint's alpha channel, or 1 for a nil paint.
func (p *Paint) Alpha() float64 {
	if p == nil {
		return 1.0
	}
	return p.Color.A
}

var defaultPaint = *NewPaint()
