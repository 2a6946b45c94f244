package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format describes the sample layout of a volume or image texture:
// how many components each texel has and how wide one component is.
//
// The zero value is not a valid format; use [SelectFormat].
type Format struct {
	// Components is the number of components per texel: 1, 3 or 4.
	Components uint32

	// BitWidth is the width of one component in bits: 8, 16 or 32.
	BitWidth uint32

	// Float marks 32-bit floating point data. Only single-channel
	// float formats are supported.
	Float bool
}

// SelectFormat maps a dataset's component count and bit width to a
// texture format:
//
//	components: 1 -> single channel, 3 -> RGB, 4 -> RGBA
//	bit width:  8 -> byte-normalized, 16 -> short-normalized,
//	            32 -> float, single channel only
//
// Any other combination is unsupported and returns an error.
func SelectFormat(bitWidth, components uint32) (Format, error) {
	switch components {
	case 1, 3, 4:
	default:
		return Format{}, fmt.Errorf("%w: %d", ErrUnsupportedComponentCount, components)
	}

	switch bitWidth {
	case 8, 16:
		return Format{Components: components, BitWidth: bitWidth}, nil
	case 32:
		if components != 1 {
			return Format{}, fmt.Errorf("%w: 32-bit data must be single channel, got %d components",
				ErrUnsupportedBitWidth, components)
		}
		return Format{Components: 1, BitWidth: 32, Float: true}, nil
	default:
		return Format{}, fmt.Errorf("%w: %d", ErrUnsupportedBitWidth, bitWidth)
	}
}

// RGBA8 is the format of decoded image textures and transfer functions.
var RGBA8 = Format{Components: 4, BitWidth: 8}

// BytesPerElement returns the raw byte size of one texel as stored in
// dataset bricks and staging buffers.
func (f Format) BytesPerElement() uint32 {
	return f.BitWidth / 8 * f.Components
}

// GPUBytesPerElement returns the byte size of one texel in the device
// format. Three-component data has no native GPU layout and is expanded
// to four components at upload.
func (f Format) GPUBytesPerElement() uint32 {
	comps := f.Components
	if comps == 3 {
		comps = 4
	}
	return f.BitWidth / 8 * comps
}

// TextureFormat returns the device texture format.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch {
	case f.Float:
		return gputypes.TextureFormatR32Float
	case f.BitWidth == 8 && f.Components == 1:
		return gputypes.TextureFormatR8Unorm
	case f.BitWidth == 8:
		return gputypes.TextureFormatRGBA8Unorm
	case f.BitWidth == 16 && f.Components == 1:
		return gputypes.TextureFormatR16Unorm
	case f.BitWidth == 16:
		return gputypes.TextureFormatRGBA16Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// String returns a short form like "1x16u" or "4x8u".
func (f Format) String() string {
	suffix := "u"
	if f.Float {
		suffix = "f"
	}
	return fmt.Sprintf("%dx%d%s", f.Components, f.BitWidth, suffix)
}
