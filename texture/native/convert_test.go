// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"bytes"
	"testing"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/volren/texture"
)

func TestConvertFormat(t *testing.T) {
	tests := []struct {
		f    texture.Format
		want types.TextureFormat
	}{
		{texture.Format{Components: 1, BitWidth: 8}, types.TextureFormatR8Unorm},
		{texture.Format{Components: 3, BitWidth: 8}, types.TextureFormatRGBA8Unorm},
		{texture.Format{Components: 4, BitWidth: 16}, types.TextureFormatRGBA16Unorm},
		{texture.Format{Components: 1, BitWidth: 32, Float: true}, types.TextureFormatR32Float},
		{texture.Format{}, types.TextureFormatUndefined},
	}
	for _, tt := range tests {
		if got := convertFormat(tt.f); got != tt.want {
			t.Errorf("convertFormat(%v) = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestExpandRGB8(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6}
	want := []byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF}
	if got := expandRGB(in, 8); !bytes.Equal(got, want) {
		t.Errorf("expandRGB(8) = %v, want %v", got, want)
	}
}

func TestExpandRGB16(t *testing.T) {
	in := []byte{1, 0, 2, 0, 3, 0}
	want := []byte{1, 0, 2, 0, 3, 0, 0xFF, 0xFF}
	if got := expandRGB(in, 16); !bytes.Equal(got, want) {
		t.Errorf("expandRGB(16) = %v, want %v", got, want)
	}
}
