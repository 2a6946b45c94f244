// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rawvol implements the .rvf brick container, a simple binary
// format for multi-resolution volumes: a fixed header, a sequence of
// brick payloads (raw or LZ4 block compressed) and a brick table at the
// end of the file. The table is loaded into an in-memory B-tree index
// on open; brick reads are single positioned reads.
package rawvol

import (
	"encoding/binary"

	"github.com/google/btree"

	"github.com/gogpu/volren/volume"
)

const (
	magic   = "RVF1"
	hdrSize = 4 + 4 + 4 + 8 + 8 + 8 + 4

	codecRaw = 0
	codecLZ4 = 1
)

const flagBigEndian = 1 << 0

// fileHeader is the on-disk header, little-endian, after the 4-byte
// magic.
type fileHeader struct {
	BitWidth   uint32
	Components uint32
	Flags      uint32
	MinValue   float64
	MaxValue   float64
	TableOff   uint64
	BrickCount uint32
}

// brickRecord is one entry of the on-disk brick table and the node type
// of the in-memory index.
type brickRecord struct {
	LOD              uint32
	Index            uint64
	DimX, DimY, DimZ uint32
	Offset           uint64
	StoredSize       uint64
	RawSize          uint64
	Codec            uint32
}

func (r *brickRecord) key() volume.BrickKey {
	return volume.BrickKey{LOD: r.LOD, Index: r.Index}
}

func (r *brickRecord) dims() volume.Dims {
	return volume.Dims{X: r.DimX, Y: r.DimY, Z: r.DimZ}
}

func newIndex() *btree.BTreeG[*brickRecord] {
	return btree.NewG(8, func(a, b *brickRecord) bool {
		return a.key().Less(b.key())
	})
}

// hostBigEndian reports the host byte order.
func hostBigEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 0x0102)
	return buf[0] == 0x01
}

func init() {
	volume.RegisterFormat(".rvf", func(filename string) (volume.Dataset, error) {
		return Open(filename)
	})
}
