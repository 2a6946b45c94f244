// Package texture provides the GPU resource abstraction used by the
// memory manager: opaque texture handles with byte-size accounting,
// created and filled through a backend-neutral Device.
//
// The cache layer never talks to a graphics API directly. It creates
// [Volume], [Texture2D] and [Texture1D] wrappers on a Device; the
// texture/native sub-package backs Device with gogpu/wgpu, and
// [SoftwareDevice] provides a headless in-memory implementation for
// tools and tests.
package texture

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Common texture errors.
var (
	// ErrNilDevice is returned when creating a resource without a device.
	ErrNilDevice = errors.New("texture: device is nil")

	// ErrInvalidSize is returned when texture dimensions are zero.
	ErrInvalidSize = errors.New("texture: invalid texture size")

	// ErrUnknownTexture is returned when operating on an ID the device
	// does not track.
	ErrUnknownTexture = errors.New("texture: unknown texture id")

	// ErrDestroyed is returned when operating on a freed resource.
	ErrDestroyed = errors.New("texture: resource has been destroyed")

	// ErrDataSize is returned when upload data does not match the
	// texture's byte layout.
	ErrDataSize = errors.New("texture: data size mismatch")

	// ErrUnsupportedComponentCount is returned for component counts
	// other than 1, 3 or 4.
	ErrUnsupportedComponentCount = errors.New("texture: unsupported component count")

	// ErrUnsupportedBitWidth is returned for sample widths other than
	// 8, 16 or 32 bits, or for 32-bit data with more than one component.
	ErrUnsupportedBitWidth = errors.New("texture: unsupported bit width")
)

// TextureID is an opaque handle to a device texture. IDs are never
// reused within the lifetime of a Device.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null texture.
const InvalidID TextureID = 0

// TextureDesc describes a texture to create.
type TextureDesc struct {
	// Label is an optional debug name.
	Label string

	// Size is the texture extent in texels. For 1D textures Height and
	// DepthOrArrayLayers are 1; for 2D textures DepthOrArrayLayers is 1.
	Size gputypes.Extent3D

	// Dimension is the texture dimension (1D, 2D or 3D).
	Dimension gputypes.TextureDimension

	// Format is the voxel sample format.
	Format Format
}

// Device creates, fills and destroys textures. Implementations map
// TextureIDs to backend resources; the wrappers in this package own the
// IDs and release them via DestroyTexture.
//
// WriteTexture accepts data in the format's raw layout
// ([Format.BytesPerElement] bytes per texel, row-major, planes
// outermost). Backends whose native formats differ (for example RGB
// expansion to RGBA) perform the conversion during upload.
type Device interface {
	// CreateTexture allocates a texture. Allocation failure is returned
	// as an error; the cache layer treats it as memory pressure.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// WriteTexture uploads the full texel contents of the texture.
	WriteTexture(id TextureID, data []byte) error

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)
}
