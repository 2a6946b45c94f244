package gpumem

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/volren/volume"
)

// nearestInBounds clamps a padded coordinate back into the source
// volume, mirroring what clamp-to-edge sampling would address.
func nearestInBounds(v, size uint32) uint32 {
	if v >= size {
		return size - 1
	}
	return v
}

func TestPadDataPow2Unchanged(t *testing.T) {
	size := volume.Dims{X: 4, Y: 2, Z: 2}
	raw := make([]byte, size.Elems())
	for i := range raw {
		raw[i] = byte(i)
	}

	out, padded, err := PadData(raw, size, 8, 1, false)
	if err != nil {
		t.Fatalf("PadData: %v", err)
	}
	if padded != size {
		t.Errorf("padded = %v, want %v", padded, size)
	}
	if !bytes.Equal(out, raw) {
		t.Error("power-of-two input should pad to an identical copy")
	}
	if &out[0] == &raw[0] {
		t.Error("PadData must not alias its input")
	}
}

func TestPadDataClampReplication(t *testing.T) {
	size := volume.Dims{X: 3, Y: 3, Z: 3}
	raw := make([]byte, size.Elems())
	at := func(x, y, z uint32) byte { return byte(1 + x + 10*y + 100*z%251) }
	i := 0
	for z := uint32(0); z < size.Z; z++ {
		for y := uint32(0); y < size.Y; y++ {
			for x := uint32(0); x < size.X; x++ {
				raw[i] = at(x, y, z)
				i++
			}
		}
	}

	out, padded, err := PadData(raw, size, 8, 1, false)
	if err != nil {
		t.Fatalf("PadData: %v", err)
	}
	if (padded != volume.Dims{X: 4, Y: 4, Z: 4}) {
		t.Fatalf("padded = %v, want 4x4x4", padded)
	}

	for z := uint32(0); z < padded.Z; z++ {
		for y := uint32(0); y < padded.Y; y++ {
			for x := uint32(0); x < padded.X; x++ {
				got := out[x+padded.X*(y+padded.Y*z)]
				want := at(nearestInBounds(x, size.X), nearestInBounds(y, size.Y), nearestInBounds(z, size.Z))
				if got != want {
					t.Fatalf("padded voxel (%d,%d,%d) = %d, want %d", x, y, z, got, want)
				}
			}
		}
	}
}

func TestPadDataDisableBorder(t *testing.T) {
	size := volume.Dims{X: 3, Y: 1, Z: 1}
	raw := []byte{10, 20, 30}

	out, padded, err := PadData(raw, size, 8, 1, true)
	if err != nil {
		t.Fatalf("PadData: %v", err)
	}
	want := []byte{10, 20, 30, 0}
	if padded.X != 4 || !bytes.Equal(out, want) {
		t.Errorf("out = %v (dims %v), want %v at 4x1x1", out, padded, want)
	}
}

func TestPadDataMultiByteElements(t *testing.T) {
	// One row of three 16-bit samples; the last sample replicates as a
	// unit, not byte by byte.
	size := volume.Dims{X: 3, Y: 1, Z: 1}
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	out, _, err := PadData(raw, size, 16, 1, false)
	if err != nil {
		t.Fatalf("PadData: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x05, 0x06}
	if !bytes.Equal(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestPadDataBadLength(t *testing.T) {
	if _, _, err := PadData(make([]byte, 5), volume.Dims{X: 3, Y: 1, Z: 1}, 8, 1, false); err == nil {
		t.Error("PadData accepted wrong-sized input")
	}
}

func TestPadDataTooLarge(t *testing.T) {
	prev := MaxPaddedBytes
	MaxPaddedBytes = 16
	defer func() { MaxPaddedBytes = prev }()

	_, _, err := PadData(make([]byte, 27), volume.Dims{X: 3, Y: 3, Z: 3}, 8, 1, false)
	if !errors.Is(err, ErrStagingTooLarge) {
		t.Errorf("err = %v, want ErrStagingTooLarge", err)
	}
}
