package texture

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// SoftwareDevice is an in-memory Device implementation. It keeps texel
// data in host memory and performs no GPU work, which makes it the
// fallback for headless tools and the device used throughout the test
// suites. Byte accounting matches what a GPU backend would allocate.
//
// SoftwareDevice is safe for concurrent use.
type SoftwareDevice struct {
	mu       sync.RWMutex
	textures map[TextureID]*softwareTexture
	nextID   atomic.Uint64

	allocated atomic.Uint64 // device bytes currently allocated
}

type softwareTexture struct {
	desc TextureDesc
	data []byte
}

// NewSoftwareDevice creates an empty software device.
func NewSoftwareDevice() *SoftwareDevice {
	d := &SoftwareDevice{
		textures: make(map[TextureID]*softwareTexture),
	}
	// Start ID generation at 1 (0 is InvalidID).
	d.nextID.Store(1)
	return d
}

// CreateTexture allocates a texture.
func (d *SoftwareDevice) CreateTexture(desc *TextureDesc) (TextureID, error) {
	if desc == nil {
		return InvalidID, fmt.Errorf("texture: nil descriptor")
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 || desc.Size.DepthOrArrayLayers == 0 {
		return InvalidID, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize,
			desc.Size.Width, desc.Size.Height, desc.Size.DepthOrArrayLayers)
	}

	id := TextureID(d.nextID.Add(1) - 1)
	tex := &softwareTexture{desc: *desc}

	d.mu.Lock()
	d.textures[id] = tex
	d.mu.Unlock()

	d.allocated.Add(deviceBytes(desc))
	return id, nil
}

// WriteTexture stores a copy of data as the texture contents.
func (d *SoftwareDevice) WriteTexture(id TextureID, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}

	want := rawBytes(&tex.desc)
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDataSize, len(data), want)
	}

	tex.data = append(tex.data[:0], data...)
	return nil
}

// DestroyTexture releases a texture. Unknown IDs are ignored.
func (d *SoftwareDevice) DestroyTexture(id TextureID) {
	d.mu.Lock()
	tex, ok := d.textures[id]
	if ok {
		delete(d.textures, id)
	}
	d.mu.Unlock()

	if ok {
		// Wraps around on underflow; creation always added the same amount.
		d.allocated.Add(^(deviceBytes(&tex.desc) - 1))
	}
}

// TextureData returns a copy of the stored texel data, or nil if the
// texture is unknown or never written.
func (d *SoftwareDevice) TextureData(id TextureID) []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tex, ok := d.textures[id]
	if !ok || tex.data == nil {
		return nil
	}
	out := make([]byte, len(tex.data))
	copy(out, tex.data)
	return out
}

// TextureCount returns the number of live textures.
func (d *SoftwareDevice) TextureCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.textures)
}

// AllocatedBytes returns the device byte footprint of all live textures.
func (d *SoftwareDevice) AllocatedBytes() uint64 {
	return d.allocated.Load()
}

// rawBytes is the upload size of a texture: raw layout, pre-expansion.
func rawBytes(desc *TextureDesc) uint64 {
	return uint64(desc.Size.Width) * uint64(desc.Size.Height) *
		uint64(desc.Size.DepthOrArrayLayers) * uint64(desc.Format.BytesPerElement())
}

// deviceBytes is the allocation size of a texture in the device format.
func deviceBytes(desc *TextureDesc) uint64 {
	return uint64(desc.Size.Width) * uint64(desc.Size.Height) *
		uint64(desc.Size.DepthOrArrayLayers) * uint64(desc.Format.GPUBytesPerElement())
}
