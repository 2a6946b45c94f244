package gpumem

import (
	"fmt"

	"github.com/gogpu/volren/internal/mathutil"
	"github.com/gogpu/volren/volume"
)

// MaxPaddedBytes caps the size of a single padded staging buffer.
// Requests whose padded footprint exceeds it fail with
// ErrStagingTooLarge instead of attempting a huge contiguous host
// allocation.
var MaxPaddedBytes uint64 = 1 << 31

// PadData pads raw voxel data to power-of-two dimensions for texture
// upload. The element size is bitWidth/8 * components bytes; the input
// is row-major with Z planes outermost and the output uses the same
// layout at NextPow2 dimensions.
//
// The padding region is zero-initialized. When disableBorder is false
// the last real element, row and plane are replicated into the padding
// along x, y and z respectively, so that every padded voxel equals the
// nearest in-bounds voxel and the texture behaves like clamp-to-edge
// beyond the true data. When disableBorder is true the padding stays
// zero (hard edge).
//
// PadData never modifies raw. On already power-of-two input the result
// is an identical copy.
func PadData(raw []byte, size volume.Dims, bitWidth, components uint32, disableBorder bool) ([]byte, volume.Dims, error) {
	padded := volume.Dims{
		X: mathutil.NextPow2(size.X),
		Y: mathutil.NextPow2(size.Y),
		Z: mathutil.NextPow2(size.Z),
	}

	elem := uint64(bitWidth/8) * uint64(components)
	rowSrc := uint64(size.X) * elem
	rowDst := uint64(padded.X) * elem
	planeDst := rowDst * uint64(padded.Y)
	total := planeDst * uint64(padded.Z)

	if uint64(len(raw)) != rowSrc*uint64(size.Y)*uint64(size.Z) {
		return nil, padded, fmt.Errorf("gpumem: raw data is %d bytes, want %d for %v",
			len(raw), rowSrc*uint64(size.Y)*uint64(size.Z), size)
	}
	if total > MaxPaddedBytes || padded.Elems() > total {
		return nil, padded, fmt.Errorf("%w: %v padded to %v needs %d bytes",
			ErrStagingTooLarge, size, padded, total)
	}

	out := make([]byte, total)

	src := uint64(0)
	for z := uint32(0); z < size.Z; z++ {
		dst := uint64(z) * planeDst
		for y := uint32(0); y < size.Y; y++ {
			copy(out[dst:dst+rowSrc], raw[src:src+rowSrc])

			// Replicate the last element across the x padding so the
			// row addresses like clamp.
			if !disableBorder && rowDst > rowSrc {
				last := out[dst+rowSrc-elem : dst+rowSrc]
				for x := dst + rowSrc; x < dst+rowDst; x += elem {
					copy(out[x:x+elem], last)
				}
			}
			dst += rowDst
			src += rowSrc
		}

		// Replicate the last padded row across the y padding.
		if !disableBorder && padded.Y > size.Y {
			lastRow := out[dst-rowDst : dst]
			for y := size.Y; y < padded.Y; y++ {
				copy(out[dst:dst+rowDst], lastRow)
				dst += rowDst
			}
		}
	}

	// Replicate the last padded plane across the z padding.
	if !disableBorder && padded.Z > size.Z {
		lastPlane := out[(uint64(size.Z)-1)*planeDst : uint64(size.Z)*planeDst]
		for z := size.Z; z < padded.Z; z++ {
			dst := uint64(z) * planeDst
			copy(out[dst:dst+planeDst], lastPlane)
		}
	}

	return out, padded, nil
}
