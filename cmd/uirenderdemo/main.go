// Command uirenderdemo records a small scene, builds a frame from it, and
// prints the resulting batch and draw stream. It runs against the null
// device, so it works without a GPU.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/frame"
	"github.com/gogpu/uirender/pool"
	"github.com/gogpu/uirender/record"
	"github.com/gogpu/uirender/render"
)

func main() {
	var (
		width  = flag.Int("width", 800, "viewport width")
		height = flag.Int("height", 600, "viewport height")
	)
	flag.Parse()

	node := record.NewRenderNode("demo")
	props := node.MutateStagingProperties()
	props.Width = float64(*width)
	props.Height = float64(*height)
	node.SetStagingDisplayList(recordScene(*width, *height))
	node.PushStagingChanges()

	builder := frame.NewBuilder(*width, *height)
	builder.DeferRenderNode(node)

	renderer := render.NewBakedOpRenderer(
		render.NullDeviceHandle{},
		pool.New(memoryAllocator{}),
		render.WithLightInfo(render.LightInfo{
			LightRadius:        800,
			AmbientShadowAlpha: 0.039,
			SpotShadowAlpha:    0.19,
		}),
	)
	dispatcher := render.NewBakedOpDispatcher(renderer)

	if err := builder.Replay(renderer, dispatcher); err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	for i, g := range renderer.Glops() {
		fmt.Printf("glop %2d: %3d verts, blend %-8s bounds (%.0f,%.0f,%.0f,%.0f)\n",
			i, len(g.Mesh.Vertices)/2, g.Fill.Blend,
			g.Bounds.Left, g.Bounds.Top, g.Bounds.Right, g.Bounds.Bottom)
	}
}

func recordScene(width, height int) *record.DisplayList {
	canvas := record.NewCanvas(width, height)

	background := uirender.NewPaint()
	background.Color = uirender.RGB(0.12, 0.12, 0.16)
	canvas.DrawRect(0, 0, float64(width), float64(height), background)

	// Overlapping cards composited through a translucent layer.
	canvas.SaveLayerAlpha(40, 40, 360, 280, 0.75)
	card := uirender.NewPaint()
	card.Color = uirender.RGB(0.9, 0.45, 0.2)
	canvas.DrawRect(40, 40, 240, 200, card)
	card2 := uirender.NewPaint()
	card2.Color = uirender.RGB(0.2, 0.55, 0.9)
	canvas.DrawRect(120, 100, 360, 280, card2)
	canvas.Restore()

	grid := uirender.NewPaint()
	grid.Style = uirender.PaintStyleStroke
	grid.StrokeWidth = 2
	var lines []float64
	for x := 0.0; x < float64(width); x += 100 {
		lines = append(lines, x, 0, x, float64(height))
	}
	canvas.DrawLines(lines, grid)

	return canvas.FinishRecording()
}

// memoryAllocator is a device-free allocator so the demo can run without
// a GPU.
type memoryAllocator struct{}

func (memoryAllocator) CreateLayerTexture(width, height int) (pool.Texture, error) {
	return &memoryTexture{width: width, height: height}, nil
}

type memoryTexture struct {
	width, height int
}

func (t *memoryTexture) Width() int  { return t.width }
func (t *memoryTexture) Height() int { return t.height }
func (t *memoryTexture) Destroy()    {}
