package record

import (
	"github.com/gogpu/uirender"
)

// LayerKind selects how a render node's content is backed.
type LayerKind uint8

const (
	// LayerNone draws the node's content directly into its parent target.
	LayerNone LayerKind = iota
	// LayerHardware caches the node's content in a persistent offscreen
	// buffer, repainted only when damaged.
	LayerHardware
)

// layerKindNames maps LayerKind values to their string representation.
var layerKindNames = [...]string{
	LayerNone:     "None",
	LayerHardware: "Hardware",
}

// String returns the string representation of a LayerKind.
func (k LayerKind) String() string {
	if int(k) < len(layerKindNames) {
		return layerKindNames[k]
	}
	return "Unknown"
}

// Properties holds a render node's display attributes. They are staged by
// the UI thread and applied atomically by PushStagingChanges.
type Properties struct {
	// Left, Top position the node in its parent's space.
	Left, Top float64
	// Width, Height bound the node's content.
	Width, Height float64

	TranslationX float64
	TranslationY float64
	TranslationZ float64
	Elevation    float64

	ScaleX float64
	ScaleY float64
	PivotX float64
	PivotY float64

	// Alpha in [0, 1]; values below 1 blend the subtree.
	Alpha float64

	// HasOverlappingRendering forces alpha blending through a save-layer,
	// since per-op alpha would double-blend overlapping content.
	HasOverlappingRendering bool

	// ClipToBounds intersects the node's (0,0,Width,Height) rect into the
	// clip before drawing its content.
	ClipToBounds bool

	// StaticMatrix, when set, overrides AnimationMatrix.
	StaticMatrix    *uirender.Matrix
	AnimationMatrix *uirender.Matrix

	// ProjectBackwards marks the node to be drawn onto the nearest
	// ancestor projection receiver instead of at its natural position.
	ProjectBackwards bool

	// ProjectionReceiver marks the node's background as the target
	// surface for projected descendants.
	ProjectionReceiver bool

	LayerKind LayerKind
}

// DefaultProperties returns properties with neutral values.
func DefaultProperties() Properties {
	return Properties{
		ScaleX:       1,
		ScaleY:       1,
		Alpha:        1,
		ClipToBounds: true,
	}
}

// Z returns the effective Z used for reorder partitioning.
func (p *Properties) Z() float64 {
	return p.Elevation + p.TranslationZ
}

// HasTransform reports whether TransformMatrix differs from a pure
// (Left, Top) placement.
func (p *Properties) HasTransform() bool {
	return p.TranslationX != 0 || p.TranslationY != 0 ||
		p.ScaleX != 1 || p.ScaleY != 1 ||
		p.StaticMatrix != nil || p.AnimationMatrix != nil
}

// TransformMatrix composes the node's parent-space transform: layout
// position, then the static (or animation) matrix, then translation, then
// scale about the pivot.
func (p *Properties) TransformMatrix() uirender.Matrix {
	m := uirender.Translate(p.Left, p.Top)
	if p.StaticMatrix != nil {
		m = m.Multiply(*p.StaticMatrix)
	} else if p.AnimationMatrix != nil {
		m = m.Multiply(*p.AnimationMatrix)
	}
	if p.TranslationX != 0 || p.TranslationY != 0 {
		m = m.Multiply(uirender.Translate(p.TranslationX, p.TranslationY))
	}
	if p.ScaleX != 1 || p.ScaleY != 1 {
		m = m.Multiply(uirender.Translate(p.PivotX, p.PivotY))
		m = m.Multiply(uirender.Scale(p.ScaleX, p.ScaleY))
		m = m.Multiply(uirender.Translate(-p.PivotX, -p.PivotY))
	}
	return m
}

// RenderNode pairs a display list with display properties. Both are double
// buffered: the UI thread mutates the staging copies, and PushStagingChanges
// promotes them to the synced copies the frame builder reads. The two sides
// never alias, so a frame in flight is never affected by ongoing recording.
type RenderNode struct {
	name string

	properties        Properties
	stagingProperties Properties

	displayList        *DisplayList
	stagingDisplayList *DisplayList
	stagingListDirty   bool

	// layer backs the node's content when LayerKind is LayerHardware.
	// Owned by the frame builder.
	layer *LayerHandle
}

// NewRenderNode creates a node with neutral properties.
func NewRenderNode(name string) *RenderNode {
	return &RenderNode{
		name:              name,
		properties:        DefaultProperties(),
		stagingProperties: DefaultProperties(),
	}
}

// Name returns the debug name given at creation.
func (n *RenderNode) Name() string { return n.name }

// Properties returns the synced properties read by the frame builder.
func (n *RenderNode) Properties() *Properties { return &n.properties }

// MutateStagingProperties returns the staging properties for the UI thread
// to modify. Changes become visible to rendering at PushStagingChanges.
func (n *RenderNode) MutateStagingProperties() *Properties {
	return &n.stagingProperties
}

// SetStagingDisplayList stages a freshly recorded display list.
func (n *RenderNode) SetStagingDisplayList(list *DisplayList) {
	n.stagingDisplayList = list
	n.stagingListDirty = true
}

// PushStagingChanges promotes staged properties and display list to the
// synced side. The explicit sync point: everything staged before the call
// is visible to the next frame, nothing after.
func (n *RenderNode) PushStagingChanges() {
	n.properties = n.stagingProperties
	if n.stagingListDirty {
		n.displayList = n.stagingDisplayList
		n.stagingDisplayList = nil
		n.stagingListDirty = false
	}
}

// DisplayList returns the synced display list, nil when nothing has been
// pushed.
func (n *RenderNode) DisplayList() *DisplayList { return n.displayList }

// Layer returns the node's hardware layer handle, nil when the node is not
// layer-backed.
func (n *RenderNode) Layer() *LayerHandle { return n.layer }

// SetLayer attaches or detaches the node's hardware layer handle.
func (n *RenderNode) SetLayer(layer *LayerHandle) { n.layer = layer }
