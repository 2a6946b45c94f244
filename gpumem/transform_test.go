package gpumem

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func samples16(vals ...uint16) []byte {
	buf := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.NativeEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func TestQuantize16to8(t *testing.T) {
	got := quantize16to8(samples16(0, 32768, 65535), 0, 65535)
	want := []byte{0, 127, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("quantize = %v, want %v", got, want)
	}
}

func TestQuantize16to8Range(t *testing.T) {
	// Values outside the declared range clamp to the ends.
	got := quantize16to8(samples16(50, 100, 150, 200, 250), 100, 200)
	want := []byte{0, 0, 127, 255, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("quantize = %v, want %v", got, want)
	}
}

func TestQuantize16to8DegenerateRange(t *testing.T) {
	got := quantize16to8(samples16(42, 42), 42, 42)
	want := []byte{0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("quantize with min == max = %v, want %v", got, want)
	}
}

func TestSwapEndian16(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	swapEndian(data, 16)
	want := []byte{0x02, 0x01, 0x04, 0x03}
	if !bytes.Equal(data, want) {
		t.Errorf("swapped = %v, want %v", data, want)
	}
}

func TestSwapEndian32(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	swapEndian(data, 32)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(data, want) {
		t.Errorf("swapped = %v, want %v", data, want)
	}
}

func TestSwapEndian8NoOp(t *testing.T) {
	data := []byte{0x01, 0x02}
	swapEndian(data, 8)
	if !bytes.Equal(data, []byte{0x01, 0x02}) {
		t.Error("8-bit data must not be swapped")
	}
}

func TestUploadHub(t *testing.T) {
	hub := NewUploadHub(16)
	if hub.Size() != 64 {
		t.Errorf("Size = %d, want 64", hub.Size())
	}
	if !hub.Fits(64) {
		t.Error("Fits(64) = false on a 64-byte hub")
	}
	if hub.Fits(65) {
		t.Error("Fits(65) = true on a 64-byte hub")
	}
	if got := hub.Bytes(8); len(got) != 8 {
		t.Errorf("Bytes(8) length = %d", len(got))
	}

	var nilHub *UploadHub
	if nilHub.Fits(1) {
		t.Error("nil hub must not accept bricks")
	}
	if NewUploadHub(0).Fits(1) {
		t.Error("zero-sized hub must not accept bricks")
	}
}
