package texture

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
)

// failAfterDevice wraps a SoftwareDevice and fails CreateTexture after a
// fixed number of successful allocations.
type failAfterDevice struct {
	*SoftwareDevice
	remaining int
}

func (d *failAfterDevice) CreateTexture(desc *TextureDesc) (TextureID, error) {
	if d.remaining <= 0 {
		return InvalidID, fmt.Errorf("device out of memory")
	}
	d.remaining--
	return d.SoftwareDevice.CreateTexture(desc)
}

func seq(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestNewVolume3D(t *testing.T) {
	dev := NewSoftwareDevice()
	size := gputypes.Extent3D{Width: 4, Height: 2, DepthOrArrayLayers: 3}
	f := Format{Components: 1, BitWidth: 8}

	v, err := NewVolume(dev, size, f, seq(4*2*3), false)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if v.Stacked() {
		t.Error("Stacked() = true for 3D volume")
	}
	if got := v.GPUSize(); got != 24 {
		t.Errorf("GPUSize() = %d, want 24", got)
	}
	if dev.TextureCount() != 1 {
		t.Errorf("device holds %d textures, want 1", dev.TextureCount())
	}

	v.Free()
	if dev.TextureCount() != 0 {
		t.Errorf("device holds %d textures after Free, want 0", dev.TextureCount())
	}
	if got := v.GPUSize(); got != 0 {
		t.Errorf("GPUSize() after Free = %d, want 0", got)
	}
	v.Free() // idempotent
}

func TestNewVolumeStacked(t *testing.T) {
	dev := NewSoftwareDevice()
	size := gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 3}
	f := Format{Components: 1, BitWidth: 8}
	data := seq(2 * 2 * 3)

	v, err := NewVolume(dev, size, f, data, true)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if !v.Stacked() {
		t.Error("Stacked() = false for 2D stack")
	}
	if dev.TextureCount() != 3 {
		t.Fatalf("device holds %d textures, want 3 slices", dev.TextureCount())
	}

	// Each slice must hold its own Z plane.
	for z, id := range v.ids {
		got := dev.TextureData(id)
		want := data[z*4 : z*4+4]
		if len(got) != 4 {
			t.Fatalf("slice %d holds %d bytes, want 4", z, len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("slice %d byte %d = %d, want %d", z, i, got[i], want[i])
			}
		}
	}
}

func TestNewVolumePartialFailureTearsDown(t *testing.T) {
	soft := NewSoftwareDevice()
	dev := &failAfterDevice{SoftwareDevice: soft, remaining: 2}
	size := gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 4}
	f := Format{Components: 1, BitWidth: 8}

	_, err := NewVolume(dev, size, f, seq(16), true)
	if err == nil {
		t.Fatal("NewVolume should fail when the device runs out after 2 slices")
	}
	if soft.TextureCount() != 0 {
		t.Errorf("partially created slices leaked: %d textures live", soft.TextureCount())
	}
}

func TestVolumeSetDataSizeMismatch(t *testing.T) {
	dev := NewSoftwareDevice()
	size := gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 2}
	f := Format{Components: 1, BitWidth: 8}

	v, err := NewVolume(dev, size, f, seq(8), false)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if err := v.SetData(seq(7)); !errors.Is(err, ErrDataSize) {
		t.Errorf("SetData with short buffer: err = %v, want ErrDataSize", err)
	}

	v.Free()
	if err := v.SetData(seq(8)); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetData after Free: err = %v, want ErrDestroyed", err)
	}
}

func TestTexture2DLifecycle(t *testing.T) {
	dev := NewSoftwareDevice()
	tex, err := NewTexture2D(dev, 4, 4, RGBA8, seq(4*4*4))
	if err != nil {
		t.Fatalf("NewTexture2D: %v", err)
	}
	if got := tex.GPUSize(); got != 64 {
		t.Errorf("GPUSize() = %d, want 64", got)
	}
	tex.Free()
	if dev.TextureCount() != 0 {
		t.Errorf("device holds %d textures after Free", dev.TextureCount())
	}
}

func TestTexture1DLifecycle(t *testing.T) {
	dev := NewSoftwareDevice()
	tex, err := NewTexture1D(dev, 256, RGBA8, seq(256*4))
	if err != nil {
		t.Fatalf("NewTexture1D: %v", err)
	}
	if got := tex.GPUSize(); got != 1024 {
		t.Errorf("GPUSize() = %d, want 1024", got)
	}
	if err := tex.SetData(seq(10)); !errors.Is(err, ErrDataSize) {
		t.Errorf("SetData short: err = %v, want ErrDataSize", err)
	}
	tex.Free()
	tex.Free() // idempotent
}

func TestSoftwareDeviceAccounting(t *testing.T) {
	dev := NewSoftwareDevice()

	// RGB8 expands to RGBA8 on the device: 2x2x1 texels * 4 bytes.
	id, err := dev.CreateTexture(&TextureDesc{
		Size:      gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1},
		Dimension: gputypes.TextureDimension2D,
		Format:    Format{Components: 3, BitWidth: 8},
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if got := dev.AllocatedBytes(); got != 16 {
		t.Errorf("AllocatedBytes() = %d, want 16", got)
	}

	// Uploads are in raw layout: 3 bytes per texel.
	if err := dev.WriteTexture(id, seq(12)); err != nil {
		t.Errorf("WriteTexture: %v", err)
	}
	if err := dev.WriteTexture(id, seq(16)); !errors.Is(err, ErrDataSize) {
		t.Errorf("WriteTexture wrong size: err = %v, want ErrDataSize", err)
	}

	dev.DestroyTexture(id)
	if got := dev.AllocatedBytes(); got != 0 {
		t.Errorf("AllocatedBytes() after destroy = %d, want 0", got)
	}

	if err := dev.WriteTexture(id, seq(12)); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("WriteTexture on destroyed id: err = %v, want ErrUnknownTexture", err)
	}
}
