// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rawvol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/google/btree"
	"github.com/pierrec/lz4/v4"

	"github.com/gogpu/volren/volume"
)

// Dataset is a read-only .rvf volume.
type Dataset struct {
	filename string
	hdr      fileHeader

	mu     sync.Mutex
	f      *os.File
	index  *btree.BTreeG[*brickRecord]
	closed bool
}

var _ volume.Dataset = (*Dataset)(nil)

// Open opens a .rvf file and loads its brick table.
func Open(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("rawvol: %w", err)
	}

	d := &Dataset{filename: filename, f: f, index: newIndex()}
	if err := d.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := d.readTable(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dataset) readHeader() error {
	buf := make([]byte, hdrSize+4)
	if _, err := d.f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("rawvol: read header: %w", err)
	}
	if string(buf[:4]) != magic {
		return fmt.Errorf("rawvol: %s: bad magic", d.filename)
	}
	if err := binary.Read(bytes.NewReader(buf[4:]), binary.LittleEndian, &d.hdr); err != nil {
		return fmt.Errorf("rawvol: decode header: %w", err)
	}
	return nil
}

func (d *Dataset) readTable() error {
	recSize := binary.Size(brickRecord{})
	buf := make([]byte, recSize*int(d.hdr.BrickCount))
	if _, err := d.f.ReadAt(buf, int64(d.hdr.TableOff)); err != nil {
		return fmt.Errorf("rawvol: read brick table: %w", err)
	}
	r := bytes.NewReader(buf)
	for i := uint32(0); i < d.hdr.BrickCount; i++ {
		rec := &brickRecord{}
		if err := binary.Read(r, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("rawvol: decode brick table: %w", err)
		}
		d.index.ReplaceOrInsert(rec)
	}
	return nil
}

func (d *Dataset) lookup(key volume.BrickKey) (*brickRecord, bool) {
	return d.index.Get(&brickRecord{LOD: key.LOD, Index: key.Index})
}

// Filename returns the path the dataset was opened from.
func (d *Dataset) Filename() string { return d.filename }

// BitWidth returns the sample width in bits.
func (d *Dataset) BitWidth() uint32 { return d.hdr.BitWidth }

// ComponentCount returns the samples per voxel.
func (d *Dataset) ComponentCount() uint32 { return d.hdr.Components }

// Range returns the scalar value bounds recorded in the header.
func (d *Dataset) Range() (min, max float64) { return d.hdr.MinValue, d.hdr.MaxValue }

// SameEndianness reports whether sample bytes match host byte order.
func (d *Dataset) SameEndianness() bool {
	return (d.hdr.Flags&flagBigEndian != 0) == hostBigEndian()
}

// BrickVoxelCounts returns the voxel dimensions of a brick.
func (d *Dataset) BrickVoxelCounts(key volume.BrickKey) (volume.Dims, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.lookup(key)
	if !ok {
		return volume.Dims{}, fmt.Errorf("%w: %v", volume.ErrNoSuchBrick, key)
	}
	return rec.dims(), nil
}

// ReadBrick reads and, if needed, decompresses a brick into dst,
// reusing its capacity when it suffices.
func (d *Dataset) ReadBrick(key volume.BrickKey, dst []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("rawvol: %s is closed", d.filename)
	}
	rec, ok := d.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %v", volume.ErrNoSuchBrick, key)
	}

	stored := make([]byte, rec.StoredSize)
	if _, err := d.f.ReadAt(stored, int64(rec.Offset)); err != nil {
		return nil, fmt.Errorf("rawvol: read brick %v: %w", key, err)
	}

	switch rec.Codec {
	case codecRaw:
		return append(dst[:0], stored...), nil
	case codecLZ4:
		if uint64(cap(dst)) < rec.RawSize {
			dst = make([]byte, rec.RawSize)
		}
		dst = dst[:rec.RawSize]
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, fmt.Errorf("rawvol: decompress brick %v: %w", key, err)
		}
		if uint64(n) != rec.RawSize {
			return nil, fmt.Errorf("rawvol: brick %v: decompressed %d bytes, want %d", key, n, rec.RawSize)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("rawvol: brick %v: unknown codec %d", key, rec.Codec)
	}
}

// BrickKeys returns all brick keys in ascending order.
func (d *Dataset) BrickKeys() []volume.BrickKey {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]volume.BrickKey, 0, d.index.Len())
	d.index.Ascend(func(rec *brickRecord) bool {
		keys = append(keys, rec.key())
		return true
	})
	return keys
}

// Close closes the underlying file. Further reads fail.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.f.Close()
}
