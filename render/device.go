// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the GPU-facing end of the pipeline: it consumes baked
// ops during frame replay, resolves them into Glops, and manages render
// target and layer texture lifecycle on the device.
//
// The package receives its device from the host application through
// DeviceHandle; it never creates one. With a NullDeviceHandle the renderer
// still runs the full replay, tracking state and dirty regions without
// touching a GPU, which is what the tests use.
package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirender/pool"
)

// Render errors.
var (
	// ErrNoTargetBound is returned when drawing without an active target.
	ErrNoTargetBound = errors.New("render: no render target bound")

	// ErrTargetAlreadyBound is returned when starting a target while one
	// is active.
	ErrTargetAlreadyBound = errors.New("render: render target already bound")

	// ErrNilDevice is returned when a GPU operation needs a device and
	// none is present.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrInvalidTextureSize is returned for non-positive layer dimensions.
	ErrInvalidTextureSize = errors.New("render: invalid texture size")
)

// DeviceHandle provides GPU device access from the host application.
//
// The host implements DeviceHandle and passes it in, so GPU resources are
// shared with the rest of the application and the renderer never owns a
// device. It is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used when no GPU is available; the renderer then only tracks state.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns unknown adapter info for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// LayerAllocator creates layer textures on a hal device. It implements
// pool.TextureAllocator, so the offscreen buffer pool can recycle real GPU
// textures.
type LayerAllocator struct {
	device hal.Device
}

// NewLayerAllocator creates an allocator over the given device.
func NewLayerAllocator(device hal.Device) *LayerAllocator {
	return &LayerAllocator{device: device}
}

// CreateLayerTexture allocates an RGBA8 texture usable as both render
// attachment and sampled texture.
func (a *LayerAllocator) CreateLayerTexture(width, height int) (pool.Texture, error) {
	if a.device == nil {
		return nil, ErrNilDevice
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidTextureSize
	}
	desc := &hal.TextureDescriptor{
		Label: "uirender/layer",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
	tex, err := a.device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	return &layerTexture{
		texture: tex,
		device:  a.device,
		width:   width,
		height:  height,
	}, nil
}

var _ pool.TextureAllocator = (*LayerAllocator)(nil)

// layerTexture adapts a hal texture to the pool's Texture interface.
type layerTexture struct {
	texture hal.Texture
	device  hal.Device
	width   int
	height  int
}

func (t *layerTexture) Width() int  { return t.width }
func (t *layerTexture) Height() int { return t.height }

func (t *layerTexture) Destroy() {
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
