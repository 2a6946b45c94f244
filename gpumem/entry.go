package gpumem

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/volren/internal/mathutil"
	"github.com/gogpu/volren/texture"
	"github.com/gogpu/volren/volume"
)

// VolumeFlags selects the upload policy of a brick request. Two cache
// entries are interchangeable only if their flags match exactly.
type VolumeFlags struct {
	// PadToPowerOfTwo pads the brick to power-of-two dimensions for
	// hardware without non-power-of-two texture support.
	PadToPowerOfTwo bool

	// DownsampleTo8Bit quantizes 16-bit data to 8 bits using the
	// dataset's value range.
	DownsampleTo8Bit bool

	// DisableBorder leaves the power-of-two padding zero-filled instead
	// of replicating the volume edge.
	DisableBorder bool

	// Emulate2DStacks uploads the brick as a stack of 2D slice textures
	// instead of one 3D texture.
	Emulate2DStacks bool
}

// volumeEntry binds one brick of one dataset, under one set of upload
// flags, to its GPU residency. Entries track how many renderers hold
// the brick and when it was last handed out; unused entries are the
// replacement and eviction candidates.
type volumeEntry struct {
	ds    volume.Dataset
	key   volume.BrickKey
	flags VolumeFlags

	userCount  int
	intraFrame uint64
	frame      uint64

	vol *texture.Volume

	// data is the transient staging buffer; nil once uploaded.
	data []byte

	// usingHub records whether the last staging went through the shared
	// hub or a private buffer.
	usingHub bool
}

// equals reports whether the entry serves exactly this request.
func (e *volumeEntry) equals(ds volume.Dataset, key volume.BrickKey, flags VolumeFlags) bool {
	return e.ds == ds && e.key == key && e.flags == flags
}

// matchDims reports whether the entry's brick has the given voxel
// counts, meaning its GPU allocation has the byte layout a brick of
// that shape needs.
func (e *volumeEntry) matchDims(dims volume.Dims) bool {
	if e.vol == nil {
		return false
	}
	own, err := e.ds.BrickVoxelCounts(e.key)
	if err != nil {
		return false
	}
	return own == dims
}

// access hands the brick to a renderer: the user count grows and the
// recency stamps move to the caller's current counters.
func (e *volumeEntry) access(intraFrame, frame uint64) *texture.Volume {
	e.intraFrame = intraFrame
	e.frame = frame
	e.userCount++
	return e.vol
}

// olderThan reports whether e was used less recently than (frame,
// intra): framewise older first, position within the frame second.
func (e *volumeEntry) olderThan(frame, intra uint64) bool {
	if e.frame != frame {
		return e.frame < frame
	}
	return e.intraFrame < intra
}

// gpuSize returns the entry's device byte footprint.
func (e *volumeEntry) gpuSize() uint64 {
	if e.vol == nil {
		return 0
	}
	return e.vol.GPUSize()
}

// loadData fetches the brick's raw bytes, staging them in the hub when
// they fit and in a private buffer otherwise.
func (e *volumeEntry) loadData(hub *UploadHub) error {
	dims, err := e.ds.BrickVoxelCounts(e.key)
	if err != nil {
		return err
	}
	raw := dims.Bytes(e.ds.BitWidth(), e.ds.ComponentCount())

	var dst []byte
	if hub.Fits(raw) {
		dst = hub.Bytes(raw)[:0]
		e.usingHub = true
	} else {
		e.usingHub = false
	}

	e.data, err = e.ds.ReadBrick(e.key, dst)
	if err != nil {
		e.freeData()
		return fmt.Errorf("read brick %v: %w", e.key, err)
	}
	return nil
}

// freeData drops the staging buffer.
func (e *volumeEntry) freeData() {
	e.data = nil
}

// stage produces the upload-ready buffer for the entry's brick: raw
// bytes fetched, byte order corrected, optionally quantized to 8 bits
// and padded to power-of-two dimensions. It returns the buffer, its
// extent and the texture format.
func (e *volumeEntry) stage(hub *UploadHub) ([]byte, gputypes.Extent3D, texture.Format, error) {
	var zero gputypes.Extent3D

	if err := e.loadData(hub); err != nil {
		return nil, zero, texture.Format{}, err
	}
	defer e.freeData()

	dims, err := e.ds.BrickVoxelCounts(e.key)
	if err != nil {
		return nil, zero, texture.Format{}, err
	}

	data := e.data
	bitWidth := e.ds.BitWidth()
	comps := e.ds.ComponentCount()

	// Samples must be in host order before they are interpreted, so the
	// swap happens ahead of quantization.
	if !e.ds.SameEndianness() {
		swapEndian(data, bitWidth)
	}

	if e.flags.DownsampleTo8Bit && bitWidth != 8 {
		if bitWidth != 16 {
			return nil, zero, texture.Format{}, fmt.Errorf("%w: %d bits", ErrUnsupportedDownsample, bitWidth)
		}
		min, max := e.ds.Range()
		data = quantize16to8(data, min, max)
		bitWidth = 8
	}

	format, err := texture.SelectFormat(bitWidth, comps)
	if err != nil {
		return nil, zero, texture.Format{}, err
	}

	if e.flags.PadToPowerOfTwo && !(mathutil.IsPow2(dims.X) && mathutil.IsPow2(dims.Y) && mathutil.IsPow2(dims.Z)) {
		data, dims, err = PadData(data, dims, bitWidth, comps, e.flags.DisableBorder)
		if err != nil {
			return nil, zero, texture.Format{}, err
		}
	}

	extent := gputypes.Extent3D{Width: dims.X, Height: dims.Y, DepthOrArrayLayers: dims.Z}
	return data, extent, format, nil
}

// build creates the entry's GPU resource and uploads the brick. On
// failure nothing is left behind.
func (e *volumeEntry) build(dev texture.Device, hub *UploadHub) error {
	data, extent, format, err := e.stage(hub)
	if err != nil {
		return err
	}

	vol, err := texture.NewVolume(dev, extent, format, data, e.flags.Emulate2DStacks)
	if err != nil {
		return err
	}
	e.vol = vol
	return nil
}

// refill rebinds the entry to a new brick and re-uploads into the
// existing GPU allocation. The caller guarantees matching shape and
// flags, so the byte layout is unchanged.
func (e *volumeEntry) refill(key volume.BrickKey, hub *UploadHub) error {
	prev := e.key
	e.key = key

	data, _, _, err := e.stage(hub)
	if err != nil {
		e.key = prev
		return err
	}
	if err := e.vol.SetData(data); err != nil {
		return err
	}
	return nil
}

// freeTexture destroys the entry's GPU resource.
func (e *volumeEntry) freeTexture() {
	if e.vol != nil {
		e.vol.Free()
		e.vol = nil
	}
	e.freeData()
}
