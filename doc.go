// Package uirender implements a deferred, hardware-accelerated 2D rendering
// pipeline: drawing commands are recorded into immutable display lists,
// resolved ("baked") against ancestor transform/clip/alpha state at frame
// build time, reordered and merged into batches for GPU efficiency, and
// replayed against a layered render target.
//
// The pipeline stages, in dependency order:
//
//   - record: RecordedOp variants, RecordingCanvas, DisplayList, RenderNode
//   - clip: escalating clip representation (rect, rectangle list, region)
//   - frame: FrameBuilder, per-layer batching/merging, BakedOpState
//   - pool: recycled offscreen (layer) render targets
//   - render: replay-time consumer producing GPU draw primitives
//
// This root package holds the shared value types (Rect, Matrix, Path, Paint)
// and the module-wide logger.
//
// # Example
//
//	canvas := record.NewCanvas(width, height)
//	canvas.DrawRect(10, 10, 100, 100, paint)
//	list := canvas.FinishRecording()
//
//	node := record.NewRenderNode("content")
//	node.SetStagingDisplayList(list)
//	node.PushStagingChanges()
//
//	fb := frame.NewBuilder(width, height)
//	fb.DeferRenderNode(node)
//	err := fb.Replay(renderer, dispatcher)
package uirender
