// Package memvol provides an in-memory multi-resolution volume dataset.
// It backs procedurally generated volumes and tests; bricks are added
// explicitly and reads are plain copies.
package memvol

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/volren/volume"
)

// Config describes an in-memory dataset. The zero value is a nameless
// 8-bit single-component volume with range [0, 255].
type Config struct {
	// Name stands in for a filename in the dataset registry. Two
	// in-memory datasets with the same name are treated as the same
	// dataset.
	Name string

	// BitWidth is the sample width in bits (8, 16 or 32).
	BitWidth uint32

	// Components is the number of samples per voxel (1, 3 or 4).
	Components uint32

	// MinValue and MaxValue bound the scalar values in the data.
	MinValue, MaxValue float64

	// BigEndian marks the brick bytes as big-endian. Reads return the
	// bytes as stored; consumers swap.
	BigEndian bool
}

type brick struct {
	dims volume.Dims
	data []byte
}

// Dataset is an in-memory volume.Dataset.
type Dataset struct {
	cfg Config

	mu     sync.RWMutex
	bricks map[volume.BrickKey]*brick
	closed bool
}

var _ volume.Dataset = (*Dataset)(nil)

// New creates an empty in-memory dataset.
func New(cfg Config) *Dataset {
	if cfg.BitWidth == 0 {
		cfg.BitWidth = 8
	}
	if cfg.Components == 0 {
		cfg.Components = 1
	}
	if cfg.MinValue == 0 && cfg.MaxValue == 0 {
		cfg.MaxValue = 255
	}
	return &Dataset{cfg: cfg, bricks: make(map[volume.BrickKey]*brick)}
}

// AddBrick stores a brick. The data length must match the brick's
// voxel count at the dataset's sample size; the slice is retained, not
// copied.
func (d *Dataset) AddBrick(key volume.BrickKey, dims volume.Dims, data []byte) error {
	want := dims.Bytes(d.cfg.BitWidth, d.cfg.Components)
	if uint64(len(data)) != want {
		return fmt.Errorf("memvol: brick %v: have %d bytes, want %d", key, len(data), want)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bricks[key] = &brick{dims: dims, data: data}
	return nil
}

// Filename returns the dataset's registry name.
func (d *Dataset) Filename() string { return d.cfg.Name }

// BitWidth returns the sample width in bits.
func (d *Dataset) BitWidth() uint32 { return d.cfg.BitWidth }

// ComponentCount returns the samples per voxel.
func (d *Dataset) ComponentCount() uint32 { return d.cfg.Components }

// Range returns the scalar value bounds.
func (d *Dataset) Range() (min, max float64) { return d.cfg.MinValue, d.cfg.MaxValue }

// SameEndianness reports whether brick bytes match host byte order.
func (d *Dataset) SameEndianness() bool { return !d.cfg.BigEndian }

// BrickVoxelCounts returns the voxel dimensions of a brick.
func (d *Dataset) BrickVoxelCounts(key volume.BrickKey) (volume.Dims, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.bricks[key]
	if !ok {
		return volume.Dims{}, fmt.Errorf("%w: %v", volume.ErrNoSuchBrick, key)
	}
	return b.dims, nil
}

// ReadBrick copies a brick's bytes into dst, reusing its capacity when
// it suffices.
func (d *Dataset) ReadBrick(key volume.BrickKey, dst []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, fmt.Errorf("memvol: dataset %q is closed", d.cfg.Name)
	}
	b, ok := d.bricks[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", volume.ErrNoSuchBrick, key)
	}
	return append(dst[:0], b.data...), nil
}

// BrickKeys returns all brick keys in ascending order.
func (d *Dataset) BrickKeys() []volume.BrickKey {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]volume.BrickKey, 0, len(d.bricks))
	for k := range d.bricks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Close marks the dataset closed. Further reads fail.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
