// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package transfer provides editable transfer functions for volume
// rendering. A transfer function maps scalar voxel values to RGBA color
// and opacity; the GPU memory manager keeps a texture copy of each
// function and re-uploads it when the function changes.
package transfer

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Function1D is a 1D RGBA lookup table over the scalar value range.
// Entries are 8-bit straight RGBA.
type Function1D struct {
	size uint32
	rgba []byte
}

// New1D creates a function with a default grayscale ramp: color and
// opacity grow linearly from transparent black to opaque white.
func New1D(size uint32) *Function1D {
	f := &Function1D{size: size, rgba: make([]byte, int(size)*4)}
	f.SetRamp()
	return f
}

// Size returns the number of table entries.
func (f *Function1D) Size() uint32 { return f.size }

// Bytes returns the backing RGBA table. The slice is live; mutations
// take effect on the next texture upload.
func (f *Function1D) Bytes() []byte { return f.rgba }

// SetEntry sets one table entry. Out-of-range indices are ignored.
func (f *Function1D) SetEntry(i uint32, r, g, b, a byte) {
	if i >= f.size {
		return
	}
	o := int(i) * 4
	f.rgba[o], f.rgba[o+1], f.rgba[o+2], f.rgba[o+3] = r, g, b, a
}

// SetRamp resets the table to the default grayscale ramp.
func (f *Function1D) SetRamp() {
	if f.size == 0 {
		return
	}
	for i := uint32(0); i < f.size; i++ {
		v := byte(uint64(i) * 255 / uint64(f.size-1+boolToU32(f.size == 1)))
		f.SetEntry(i, v, v, v, v)
	}
}

// SetGaussian overwrites the opacity channel with a gaussian peak at
// center (in table entries) with the given standard deviation, painting
// the color channels with the peak color scaled by opacity.
func (f *Function1D) SetGaussian(center, sigma float32, r, g, b byte) {
	if sigma <= 0 {
		return
	}
	for i := uint32(0); i < f.size; i++ {
		d := (float32(i) - center) / sigma
		w := math32.Exp(-0.5 * d * d)
		f.SetEntry(i, byte(w*float32(r)), byte(w*float32(g)), byte(w*float32(b)), byte(w*255))
	}
}

// Function2D is a 2D RGBA lookup table, typically indexed by scalar
// value and gradient magnitude. Entries are 8-bit straight RGBA in
// row-major order.
type Function2D struct {
	width, height uint32
	rgba          []byte
}

// New2D creates a transparent 2D function.
func New2D(width, height uint32) *Function2D {
	return &Function2D{
		width:  width,
		height: height,
		rgba:   make([]byte, int(width)*int(height)*4),
	}
}

// Width returns the table width in entries.
func (f *Function2D) Width() uint32 { return f.width }

// Height returns the table height in entries.
func (f *Function2D) Height() uint32 { return f.height }

// Bytes returns the backing RGBA table. The slice is live; mutations
// take effect on the next texture upload.
func (f *Function2D) Bytes() []byte { return f.rgba }

// SetEntry sets one table entry. Out-of-range indices are ignored.
func (f *Function2D) SetEntry(x, y uint32, r, g, b, a byte) {
	if x >= f.width || y >= f.height {
		return
	}
	o := (int(y)*int(f.width) + int(x)) * 4
	f.rgba[o], f.rgba[o+1], f.rgba[o+2], f.rgba[o+3] = r, g, b, a
}

// FillRect paints a constant color into a rectangular region, clipped
// to the table.
func (f *Function2D) FillRect(x, y, w, h uint32, r, g, b, a byte) {
	for yy := y; yy < y+h && yy < f.height; yy++ {
		for xx := x; xx < x+w && xx < f.width; xx++ {
			f.SetEntry(xx, yy, r, g, b, a)
		}
	}
}

// String describes the function for diagnostics.
func (f *Function2D) String() string {
	return fmt.Sprintf("2D transfer function %dx%d", f.width, f.height)
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
