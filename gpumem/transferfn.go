package gpumem

import (
	"github.com/gogpu/volren"
	"github.com/gogpu/volren/texture"
	"github.com/gogpu/volren/transfer"
)

// trans1DEntry records one requester's hold on a 1D transfer function.
// Requesters sharing a function share its texture; the texture is
// destroyed when the last hold goes away.
type trans1DEntry struct {
	fn        *transfer.Function1D
	tex       *texture.Texture1D
	requester Requester
}

type trans2DEntry struct {
	fn        *transfer.Function2D
	tex       *texture.Texture2D
	requester Requester
}

// GetEmpty1DTrans creates a fresh 1D transfer function of the given
// size with its GPU texture and registers requester as its first user.
func (m *Manager) GetEmpty1DTrans(size uint32, requester Requester) (*transfer.Function1D, *texture.Texture1D, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := transfer.New1D(size)
	tex, err := texture.NewTexture1D(m.dev, size, texture.RGBA8, fn.Bytes())
	if err != nil {
		return nil, nil, err
	}
	m.trans1D = append(m.trans1D, &trans1DEntry{fn: fn, tex: tex, requester: requester})
	return fn, tex, nil
}

// Changed1DTrans re-uploads a transfer function's table to its texture
// after the caller edited it.
func (m *Manager) Changed1DTrans(fn *transfer.Function1D) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, te := range m.trans1D {
		if te.fn == fn {
			return te.tex.SetData(fn.Bytes())
		}
	}
	volren.Logger().Warn("changed unknown 1D transfer function")
	return nil
}

// Access1DTrans registers requester as another user of an existing
// transfer function and returns its texture, or nil if the function is
// not registered.
func (m *Manager) Access1DTrans(fn *transfer.Function1D, requester Requester) *texture.Texture1D {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, te := range m.trans1D {
		if te.fn == fn {
			m.trans1D = append(m.trans1D, &trans1DEntry{fn: fn, tex: te.tex, requester: requester})
			return te.tex
		}
	}
	volren.Logger().Warn("accessing unknown 1D transfer function")
	return nil
}

// Free1DTrans removes requester's hold on a transfer function. The last
// hold destroys the texture. An unknown pairing is a diagnostic and
// changes nothing.
func (m *Manager) Free1DTrans(fn *transfer.Function1D, requester Requester) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, te := range m.trans1D {
		if te.fn != fn || te.requester != requester {
			continue
		}
		m.trans1D = append(m.trans1D[:i], m.trans1D[i+1:]...)
		for _, other := range m.trans1D {
			if other.fn == fn {
				return
			}
		}
		te.tex.Free()
		return
	}
	volren.Logger().Warn("freeing unknown 1D transfer function")
}

// GetEmpty2DTrans creates a fresh 2D transfer function with its GPU
// texture and registers requester as its first user.
func (m *Manager) GetEmpty2DTrans(width, height uint32, requester Requester) (*transfer.Function2D, *texture.Texture2D, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := transfer.New2D(width, height)
	tex, err := texture.NewTexture2D(m.dev, width, height, texture.RGBA8, fn.Bytes())
	if err != nil {
		return nil, nil, err
	}
	m.trans2D = append(m.trans2D, &trans2DEntry{fn: fn, tex: tex, requester: requester})
	return fn, tex, nil
}

// Changed2DTrans re-uploads a transfer function's table to its texture
// after the caller edited it.
func (m *Manager) Changed2DTrans(fn *transfer.Function2D) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, te := range m.trans2D {
		if te.fn == fn {
			return te.tex.SetData(fn.Bytes())
		}
	}
	volren.Logger().Warn("changed unknown 2D transfer function")
	return nil
}

// Access2DTrans registers requester as another user of an existing
// transfer function and returns its texture, or nil if the function is
// not registered.
func (m *Manager) Access2DTrans(fn *transfer.Function2D, requester Requester) *texture.Texture2D {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, te := range m.trans2D {
		if te.fn == fn {
			m.trans2D = append(m.trans2D, &trans2DEntry{fn: fn, tex: te.tex, requester: requester})
			return te.tex
		}
	}
	volren.Logger().Warn("accessing unknown 2D transfer function")
	return nil
}

// Free2DTrans removes requester's hold on a transfer function. The last
// hold destroys the texture.
func (m *Manager) Free2DTrans(fn *transfer.Function2D, requester Requester) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, te := range m.trans2D {
		if te.fn != fn || te.requester != requester {
			continue
		}
		m.trans2D = append(m.trans2D[:i], m.trans2D[i+1:]...)
		for _, other := range m.trans2D {
			if other.fn == fn {
				return
			}
		}
		te.tex.Free()
		return
	}
	volren.Logger().Warn("freeing unknown 2D transfer function")
}
