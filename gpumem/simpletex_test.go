package gpumem

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/volren/texture"
)

func writeTestPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTextureFromFile(t *testing.T) {
	dev := texture.NewSoftwareDevice()
	m := NewManager(dev, nil)
	path := writeTestPNG(t)

	tex, err := m.LoadTextureFromFile(path)
	if err != nil {
		t.Fatalf("LoadTextureFromFile: %v", err)
	}
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Errorf("texture is %dx%d, want 2x2", tex.Width(), tex.Height())
	}

	// Second load shares the resident texture.
	tex2, err := m.LoadTextureFromFile(path)
	if err != nil {
		t.Fatalf("LoadTextureFromFile: %v", err)
	}
	if tex2 != tex {
		t.Error("same file must share one texture")
	}
	if dev.TextureCount() != 1 {
		t.Errorf("TextureCount = %d, want 1", dev.TextureCount())
	}

	data := dev.TextureData(texture.TextureID(1))
	if len(data) != 2*2*4 {
		t.Fatalf("uploaded %d bytes, want 16", len(data))
	}
	if data[0] != 255 || data[3] != 255 {
		t.Error("top-left texel is not opaque red")
	}

	// One hold released: still resident. Second: gone.
	m.FreeTexture(tex)
	if dev.TextureCount() != 1 {
		t.Error("texture destroyed while still held")
	}
	m.FreeTexture(tex)
	if dev.TextureCount() != 0 {
		t.Error("texture not destroyed after last hold")
	}

	// Unknown texture: a diagnostic, nothing changes.
	m.FreeTexture(tex)
	if dev.TextureCount() != 0 {
		t.Error("freeing an unknown texture changed state")
	}
}

func TestLoadTextureMissingFile(t *testing.T) {
	m := NewManager(texture.NewSoftwareDevice(), nil)
	if _, err := m.LoadTextureFromFile(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("LoadTextureFromFile succeeded on a missing file")
	}
}
