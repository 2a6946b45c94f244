package gpumem

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/gogpu/volren"
	"github.com/gogpu/volren/texture"
)

// simpleTexture is one entry of the 2D texture cache: a decoded image
// file resident on the GPU, shared by filename. accessCounter counts
// outstanding holds; the cache never evicts, entries only go away when
// the counter reaches zero.
type simpleTexture struct {
	filename      string
	tex           *texture.Texture2D
	accessCounter int
}

// LoadTextureFromFile returns a GPU texture for the image file. A file
// already resident is shared without touching disk; otherwise it is
// decoded (PNG, JPEG or BMP) and uploaded as RGBA8. Every successful
// call must be paired with one FreeTexture.
func (m *Manager) LoadTextureFromFile(filename string) (*texture.Texture2D, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, st := range m.simple {
		if st.filename == filename {
			st.accessCounter++
			volren.Logger().Debug("reusing 2D texture", "file", filename, "holds", st.accessCounter)
			return st.tex, nil
		}
	}

	rgba, err := decodeRGBA(filename)
	if err != nil {
		return nil, err
	}

	b := rgba.Bounds()
	tex, err := texture.NewTexture2D(m.dev, uint32(b.Dx()), uint32(b.Dy()), texture.RGBA8, rgba.Pix)
	if err != nil {
		return nil, err
	}

	volren.Logger().Debug("2D texture uploaded", "file", filename, "w", b.Dx(), "h", b.Dy())
	m.simple = append(m.simple, &simpleTexture{filename: filename, tex: tex, accessCounter: 1})
	return tex, nil
}

// FreeTexture drops one hold on a cached 2D texture. The last hold
// destroys the GPU resource and removes the entry. An unknown texture
// is a diagnostic and changes nothing.
func (m *Manager) FreeTexture(tex *texture.Texture2D) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, st := range m.simple {
		if st.tex != tex {
			continue
		}
		st.accessCounter--
		if st.accessCounter > 0 {
			return
		}
		st.tex.Free()
		m.simple = append(m.simple[:i], m.simple[i+1:]...)
		volren.Logger().Debug("2D texture released", "file", st.filename)
		return
	}
	volren.Logger().Warn("freeing unknown 2D texture")
}

// decodeRGBA reads and decodes an image file into straight RGBA bytes.
func decodeRGBA(filename string) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gpumem: load texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("gpumem: decode %s: %w", filename, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
