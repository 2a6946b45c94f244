package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Texture2D wraps a single 2D device texture. The manager uses it for
// simple image textures (logos, UI elements) and 2D transfer functions.
type Texture2D struct {
	dev           Device
	id            TextureID
	width, height uint32
	format        Format
	freed         bool
}

// NewTexture2D allocates a 2D texture and uploads data (raw layout,
// row-major). Data may be nil to create the texture empty.
func NewTexture2D(dev Device, width, height uint32, format Format, data []byte) (*Texture2D, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	id, err := dev.CreateTexture(&TextureDesc{
		Size: gputypes.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Dimension: gputypes.TextureDimension2D,
		Format:    format,
	})
	if err != nil {
		return nil, err
	}

	t := &Texture2D{dev: dev, id: id, width: width, height: height, format: format}
	if data != nil {
		if err := t.SetData(data); err != nil {
			t.Free()
			return nil, err
		}
	}
	return t, nil
}

// SetData re-uploads the full texture contents.
func (t *Texture2D) SetData(data []byte) error {
	if t.freed {
		return ErrDestroyed
	}
	want := uint64(t.width) * uint64(t.height) * uint64(t.format.BytesPerElement())
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDataSize, len(data), want)
	}
	return t.dev.WriteTexture(t.id, data)
}

// Width returns the texture width in texels.
func (t *Texture2D) Width() uint32 { return t.width }

// Height returns the texture height in texels.
func (t *Texture2D) Height() uint32 { return t.height }

// Format returns the sample format.
func (t *Texture2D) Format() Format { return t.format }

// GPUSize returns the device byte footprint.
func (t *Texture2D) GPUSize() uint64 {
	if t.freed {
		return 0
	}
	return uint64(t.width) * uint64(t.height) * uint64(t.format.GPUBytesPerElement())
}

// Free destroys the device texture. Free is idempotent.
func (t *Texture2D) Free() {
	if t.freed {
		return
	}
	t.dev.DestroyTexture(t.id)
	t.id = InvalidID
	t.freed = true
}

// Texture1D wraps a single 1D device texture, used for 1D transfer
// functions.
type Texture1D struct {
	dev    Device
	id     TextureID
	width  uint32
	format Format
	freed  bool
}

// NewTexture1D allocates a 1D texture and uploads data. Data may be nil
// to create the texture empty.
func NewTexture1D(dev Device, width uint32, format Format, data []byte) (*Texture1D, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: width 0", ErrInvalidSize)
	}

	id, err := dev.CreateTexture(&TextureDesc{
		Size: gputypes.Extent3D{
			Width:              width,
			Height:             1,
			DepthOrArrayLayers: 1,
		},
		Dimension: gputypes.TextureDimension1D,
		Format:    format,
	})
	if err != nil {
		return nil, err
	}

	t := &Texture1D{dev: dev, id: id, width: width, format: format}
	if data != nil {
		if err := t.SetData(data); err != nil {
			t.Free()
			return nil, err
		}
	}
	return t, nil
}

// SetData re-uploads the full texture contents.
func (t *Texture1D) SetData(data []byte) error {
	if t.freed {
		return ErrDestroyed
	}
	want := uint64(t.width) * uint64(t.format.BytesPerElement())
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDataSize, len(data), want)
	}
	return t.dev.WriteTexture(t.id, data)
}

// Width returns the texture width in texels.
func (t *Texture1D) Width() uint32 { return t.width }

// GPUSize returns the device byte footprint.
func (t *Texture1D) GPUSize() uint64 {
	if t.freed {
		return 0
	}
	return uint64(t.width) * uint64(t.format.GPUBytesPerElement())
}

// Free destroys the device texture. Free is idempotent.
func (t *Texture1D) Free() {
	if t.freed {
		return
	}
	t.dev.DestroyTexture(t.id)
	t.id = InvalidID
	t.freed = true
}
