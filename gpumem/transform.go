package gpumem

import (
	"encoding/binary"
	"math"
)

// quantize16to8 downsamples 16-bit samples (host byte order) to 8 bits
// using the dataset's value range:
//
//	q = floor(255 * (v - min) / (max - min))
//
// The result is written into the prefix of the input buffer, which is
// returned re-sliced to half its length. A degenerate range maps all
// samples to zero.
func quantize16to8(data []byte, min, max float64) []byte {
	n := len(data) / 2
	scale := 0.0
	if max > min {
		scale = 255.0 / (max - min)
	}
	for i := 0; i < n; i++ {
		v := float64(binary.NativeEndian.Uint16(data[i*2:]))
		q := math.Floor((v - min) * scale)
		if q < 0 {
			q = 0
		} else if q > 255 {
			q = 255
		}
		data[i] = byte(q)
	}
	return data[:n]
}

// swapEndian reverses the byte order of each sample in place. Sample
// widths of 8 bits (and unknown widths) are left untouched.
func swapEndian(data []byte, bitWidth uint32) {
	switch bitWidth {
	case 16:
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	case 32:
		for i := 0; i+3 < len(data); i += 4 {
			data[i], data[i+3] = data[i+3], data[i]
			data[i+1], data[i+2] = data[i+2], data[i+1]
		}
	}
}
