package texture

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		bitWidth, components uint32
		want                 Format
		wantErr              error
	}{
		{8, 1, Format{Components: 1, BitWidth: 8}, nil},
		{8, 3, Format{Components: 3, BitWidth: 8}, nil},
		{8, 4, Format{Components: 4, BitWidth: 8}, nil},
		{16, 1, Format{Components: 1, BitWidth: 16}, nil},
		{16, 4, Format{Components: 4, BitWidth: 16}, nil},
		{32, 1, Format{Components: 1, BitWidth: 32, Float: true}, nil},
		{32, 3, Format{}, ErrUnsupportedBitWidth},
		{8, 2, Format{}, ErrUnsupportedComponentCount},
		{8, 0, Format{}, ErrUnsupportedComponentCount},
		{12, 1, Format{}, ErrUnsupportedBitWidth},
		{64, 1, Format{}, ErrUnsupportedBitWidth},
	}
	for _, tt := range tests {
		got, err := SelectFormat(tt.bitWidth, tt.components)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SelectFormat(%d, %d) err = %v, want %v", tt.bitWidth, tt.components, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("SelectFormat(%d, %d) unexpected error: %v", tt.bitWidth, tt.components, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SelectFormat(%d, %d) = %+v, want %+v", tt.bitWidth, tt.components, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	f := Format{Components: 3, BitWidth: 16}
	if got := f.BytesPerElement(); got != 6 {
		t.Errorf("BytesPerElement() = %d, want 6", got)
	}
	// RGB expands to RGBA on the device.
	if got := f.GPUBytesPerElement(); got != 8 {
		t.Errorf("GPUBytesPerElement() = %d, want 8", got)
	}

	f = Format{Components: 1, BitWidth: 32, Float: true}
	if got := f.BytesPerElement(); got != 4 {
		t.Errorf("BytesPerElement() = %d, want 4", got)
	}
	if got := f.GPUBytesPerElement(); got != 4 {
		t.Errorf("GPUBytesPerElement() = %d, want 4", got)
	}
}

func TestFormatTextureFormat(t *testing.T) {
	tests := []struct {
		f    Format
		want gputypes.TextureFormat
	}{
		{Format{Components: 1, BitWidth: 8}, gputypes.TextureFormatR8Unorm},
		{Format{Components: 1, BitWidth: 16}, gputypes.TextureFormatR16Unorm},
		{Format{Components: 3, BitWidth: 8}, gputypes.TextureFormatRGBA8Unorm},
		{Format{Components: 4, BitWidth: 8}, gputypes.TextureFormatRGBA8Unorm},
		{Format{Components: 4, BitWidth: 16}, gputypes.TextureFormatRGBA16Unorm},
		{Format{Components: 1, BitWidth: 32, Float: true}, gputypes.TextureFormatR32Float},
	}
	for _, tt := range tests {
		if got := tt.f.TextureFormat(); got != tt.want {
			t.Errorf("%v.TextureFormat() = %v, want %v", tt.f, got, tt.want)
		}
	}
}
