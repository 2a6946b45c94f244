// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package native backs the texture.Device interface with gogpu/wgpu.
//
// The device is either created standalone via [New] (instance and
// adapter bring-up, Vulkan backend) or attached to a host application's
// shared GPU device via [NewFromProvider]. Brick textures are allocated
// through the HAL and filled with queue writes; three-component data is
// expanded to RGBA during upload since WebGPU has no packed RGB formats.
package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/volren"
	"github.com/gogpu/volren/texture"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device implements texture.Device on a HAL device and queue.
//
// Device is safe for concurrent use; all resource maps are protected by
// a mutex. The HAL device is only destroyed by Close when the Device
// owns it (standalone bring-up), never when it was provided by a host.
type Device struct {
	mu       sync.RWMutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// external is true when device/queue are shared with a host
	// application and must not be destroyed on Close.
	external bool

	nextID   atomic.Uint64
	textures map[texture.TextureID]halTexture
}

type halTexture struct {
	tex  hal.Texture
	desc texture.TextureDesc
}

// New brings up a standalone HAL device on the Vulkan backend and wraps
// it as a texture.Device. Prefers discrete or integrated GPUs.
func New() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("native: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("native: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	volren.Logger().Info("GPU device selected", "adapter", selected.Info.Name)

	d := newDevice(openDev.Device, openDev.Queue, false)
	d.instance = instance
	return d, nil
}

// NewFromProvider attaches to a shared GPU device exposed by a host
// application through gpucontext. The provider must also expose the
// underlying HAL handles via HalDevice() any and HalQueue() any.
//
// The returned Device does not own the HAL device; Close only releases
// the texture bookkeeping.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}
	return newDevice(device, queue, true), nil
}

func newDevice(device hal.Device, queue hal.Queue, external bool) *Device {
	d := &Device{
		device:   device,
		queue:    queue,
		external: external,
		textures: make(map[texture.TextureID]halTexture),
	}
	// Start ID generation at 1 (0 is InvalidID).
	d.nextID.Store(1)
	return d
}

// CreateTexture allocates a HAL texture for the descriptor.
func (d *Device) CreateTexture(desc *texture.TextureDesc) (texture.TextureID, error) {
	if desc == nil {
		return texture.InvalidID, fmt.Errorf("native: nil descriptor")
	}
	format := convertFormat(desc.Format)
	if format == types.TextureFormatUndefined {
		return texture.InvalidID, fmt.Errorf("native: no device format for %v", desc.Format)
	}

	halDesc := &hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     convertDimension(desc.Dimension),
		Format:        format,
		Usage:         types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
	}

	tex, err := d.device.CreateTexture(halDesc)
	if err != nil {
		return texture.InvalidID, fmt.Errorf("native: create texture: %w", err)
	}

	id := texture.TextureID(d.nextID.Add(1) - 1)
	d.mu.Lock()
	d.textures[id] = halTexture{tex: tex, desc: *desc}
	d.mu.Unlock()

	return id, nil
}

// WriteTexture uploads raw-layout data, expanding RGB to RGBA when the
// device format requires it.
func (d *Device) WriteTexture(id texture.TextureID, data []byte) error {
	d.mu.RLock()
	entry, ok := d.textures[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %d", texture.ErrUnknownTexture, id)
	}

	desc := &entry.desc
	want := uint64(desc.Size.Width) * uint64(desc.Size.Height) *
		uint64(desc.Size.DepthOrArrayLayers) * uint64(desc.Format.BytesPerElement())
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", texture.ErrDataSize, len(data), want)
	}

	if desc.Format.Components == 3 {
		data = expandRGB(data, desc.Format.BitWidth)
	}

	dst := &hal.ImageCopyTexture{
		Texture:  entry.tex,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  desc.Size.Width * desc.Format.GPUBytesPerElement(),
		RowsPerImage: desc.Size.Height,
	}
	size := &hal.Extent3D{
		Width:              desc.Size.Width,
		Height:             desc.Size.Height,
		DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
	}
	d.queue.WriteTexture(dst, data, layout, size)
	return nil
}

// DestroyTexture releases a HAL texture. Unknown IDs are ignored.
func (d *Device) DestroyTexture(id texture.TextureID) {
	d.mu.Lock()
	entry, ok := d.textures[id]
	if ok {
		delete(d.textures, id)
	}
	d.mu.Unlock()

	if ok {
		d.device.DestroyTexture(entry.tex)
	}
}

// Close destroys all tracked textures and, for standalone devices, the
// HAL device and instance.
func (d *Device) Close() {
	d.mu.Lock()
	textures := d.textures
	d.textures = make(map[texture.TextureID]halTexture)
	device := d.device
	instance := d.instance
	external := d.external
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.mu.Unlock()

	if device == nil {
		return
	}
	for _, entry := range textures {
		device.DestroyTexture(entry.tex)
	}
	if !external {
		device.Destroy()
		if instance != nil {
			instance.Destroy()
		}
	}
}

var _ texture.Device = (*Device)(nil)
