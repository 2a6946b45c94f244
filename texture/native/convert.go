// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/volren/texture"
)

// convertFormat maps a sample format to the HAL texture format. WebGPU
// has no packed RGB formats, so three-component formats map to their
// RGBA equivalent; expandRGB fills in the alpha channel at upload.
func convertFormat(f texture.Format) types.TextureFormat {
	switch {
	case f.Float:
		return types.TextureFormatR32Float
	case f.BitWidth == 8 && f.Components == 1:
		return types.TextureFormatR8Unorm
	case f.BitWidth == 8:
		return types.TextureFormatRGBA8Unorm
	case f.BitWidth == 16 && f.Components == 1:
		return types.TextureFormatR16Unorm
	case f.BitWidth == 16:
		return types.TextureFormatRGBA16Unorm
	default:
		return types.TextureFormatUndefined
	}
}

// convertDimension maps the descriptor dimension to the HAL dimension.
func convertDimension(dim gputypes.TextureDimension) types.TextureDimension {
	switch dim {
	case gputypes.TextureDimension1D:
		return types.TextureDimension1D
	case gputypes.TextureDimension3D:
		return types.TextureDimension3D
	default:
		return types.TextureDimension2D
	}
}

// expandRGB converts tightly packed RGB texels to RGBA with opaque
// alpha. bitWidth is the per-component width (8 or 16).
func expandRGB(data []byte, bitWidth uint32) []byte {
	switch bitWidth {
	case 8:
		texels := len(data) / 3
		out := make([]byte, texels*4)
		for i := 0; i < texels; i++ {
			copy(out[i*4:], data[i*3:i*3+3])
			out[i*4+3] = 0xFF
		}
		return out
	case 16:
		texels := len(data) / 6
		out := make([]byte, texels*8)
		for i := 0; i < texels; i++ {
			copy(out[i*8:], data[i*6:i*6+6])
			binary.LittleEndian.PutUint16(out[i*8+6:], 0xFFFF)
		}
		return out
	default:
		return data
	}
}
