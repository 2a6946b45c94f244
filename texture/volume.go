package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Volume is the GPU residency of one dataset brick: either a single 3D
// texture or, on hardware without (usable) 3D texture support, a stack
// of 2D slice textures covering the brick along Z.
//
// Volumes are created, refilled and freed by the cache layer; renderers
// only borrow them for binding. A Volume owns its device textures until
// Free is called.
type Volume struct {
	dev     Device
	ids     []TextureID // one 3D texture, or Size.DepthOrArrayLayers 2D slices
	size    gputypes.Extent3D
	format  Format
	stacked bool
	freed   bool
}

// NewVolume allocates the device textures for a brick of the given
// extent and uploads data. Data is in raw layout: BytesPerElement bytes
// per texel, row-major, Z planes outermost.
//
// When stacked is true the brick is emulated with Size.DepthOrArrayLayers
// separate 2D textures. On any failure all partially created textures
// are destroyed and an error is returned.
func NewVolume(dev Device, size gputypes.Extent3D, format Format, data []byte, stacked bool) (*Volume, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if size.Width == 0 || size.Height == 0 || size.DepthOrArrayLayers == 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, size.Width, size.Height, size.DepthOrArrayLayers)
	}

	v := &Volume{
		dev:     dev,
		size:    size,
		format:  format,
		stacked: stacked,
	}

	if stacked {
		v.ids = make([]TextureID, 0, size.DepthOrArrayLayers)
		for z := uint32(0); z < size.DepthOrArrayLayers; z++ {
			id, err := dev.CreateTexture(&TextureDesc{
				Label: fmt.Sprintf("brick slice %d", z),
				Size: gputypes.Extent3D{
					Width:              size.Width,
					Height:             size.Height,
					DepthOrArrayLayers: 1,
				},
				Dimension: gputypes.TextureDimension2D,
				Format:    format,
			})
			if err != nil {
				v.destroy()
				return nil, fmt.Errorf("create slice %d: %w", z, err)
			}
			v.ids = append(v.ids, id)
		}
	} else {
		id, err := dev.CreateTexture(&TextureDesc{
			Label:     "brick",
			Size:      size,
			Dimension: gputypes.TextureDimension3D,
			Format:    format,
		})
		if err != nil {
			return nil, fmt.Errorf("create volume: %w", err)
		}
		v.ids = []TextureID{id}
	}

	if err := v.SetData(data); err != nil {
		v.destroy()
		return nil, err
	}
	return v, nil
}

// SetData re-uploads the full brick contents into the existing device
// textures. The data extent must match the volume's extent; this is how
// the cache refills an allocation when a brick is replaced in place.
func (v *Volume) SetData(data []byte) error {
	if v.freed {
		return ErrDestroyed
	}

	want := uint64(v.size.Width) * uint64(v.size.Height) * uint64(v.size.DepthOrArrayLayers) *
		uint64(v.format.BytesPerElement())
	if uint64(len(data)) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDataSize, len(data), want)
	}

	if !v.stacked {
		return v.dev.WriteTexture(v.ids[0], data)
	}

	plane := uint64(v.size.Width) * uint64(v.size.Height) * uint64(v.format.BytesPerElement())
	for z, id := range v.ids {
		off := uint64(z) * plane
		if err := v.dev.WriteTexture(id, data[off:off+plane]); err != nil {
			return fmt.Errorf("write slice %d: %w", z, err)
		}
	}
	return nil
}

// Size returns the volume extent in texels.
func (v *Volume) Size() gputypes.Extent3D { return v.size }

// Format returns the sample format.
func (v *Volume) Format() Format { return v.format }

// Stacked reports whether the volume is emulated with 2D slices.
func (v *Volume) Stacked() bool { return v.stacked }

// GPUSize returns the device byte footprint of the volume, accounting
// for component expansion in the device format.
func (v *Volume) GPUSize() uint64 {
	if v.freed {
		return 0
	}
	return uint64(v.size.Width) * uint64(v.size.Height) * uint64(v.size.DepthOrArrayLayers) *
		uint64(v.format.GPUBytesPerElement())
}

// Free destroys all device textures. Free is idempotent.
func (v *Volume) Free() {
	if v.freed {
		return
	}
	v.destroy()
}

func (v *Volume) destroy() {
	for _, id := range v.ids {
		v.dev.DestroyTexture(id)
	}
	v.ids = nil
	v.freed = true
}
