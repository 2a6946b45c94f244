// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rawvol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/gogpu/volren/volume"
)

// WriterConfig describes the volume a Writer produces.
type WriterConfig struct {
	BitWidth           uint32
	Components         uint32
	MinValue, MaxValue float64

	// BigEndian marks the sample bytes as big-endian. The writer does
	// not swap; callers provide bytes in the declared order.
	BigEndian bool

	// NoCompress disables LZ4 and stores every brick raw.
	NoCompress bool
}

// Writer produces a .rvf file brick by brick. Bricks may be added in
// any key order; the table is sorted on disk.
type Writer struct {
	f    *os.File
	cfg  WriterConfig
	off  uint64
	recs []brickRecord
	err  error
}

// Create starts a new .rvf file.
func Create(filename string, cfg WriterConfig) (*Writer, error) {
	if cfg.BitWidth == 0 {
		cfg.BitWidth = 8
	}
	if cfg.Components == 0 {
		cfg.Components = 1
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("rawvol: %w", err)
	}
	// Header placeholder; rewritten with the table offset on Close.
	if _, err := f.Write(make([]byte, hdrSize+4)); err != nil {
		f.Close()
		return nil, fmt.Errorf("rawvol: %w", err)
	}
	return &Writer{f: f, cfg: cfg, off: hdrSize + 4}, nil
}

// AddBrick appends one brick. The data length must match dims at the
// configured sample size.
func (w *Writer) AddBrick(key volume.BrickKey, dims volume.Dims, data []byte) error {
	if w.err != nil {
		return w.err
	}
	want := dims.Bytes(w.cfg.BitWidth, w.cfg.Components)
	if uint64(len(data)) != want {
		return fmt.Errorf("rawvol: brick %v: have %d bytes, want %d", key, len(data), want)
	}

	payload := data
	codec := uint32(codecRaw)
	if !w.cfg.NoCompress && len(data) > 0 {
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err == nil && n > 0 && n < len(data) {
			payload = buf[:n]
			codec = codecLZ4
		}
	}

	if _, err := w.f.Write(payload); err != nil {
		w.err = fmt.Errorf("rawvol: write brick %v: %w", key, err)
		return w.err
	}
	w.recs = append(w.recs, brickRecord{
		LOD:        key.LOD,
		Index:      key.Index,
		DimX:       dims.X,
		DimY:       dims.Y,
		DimZ:       dims.Z,
		Offset:     w.off,
		StoredSize: uint64(len(payload)),
		RawSize:    uint64(len(data)),
		Codec:      codec,
	})
	w.off += uint64(len(payload))
	return nil
}

// Close writes the brick table and the final header.
func (w *Writer) Close() error {
	if w.err != nil {
		w.f.Close()
		return w.err
	}

	idx := newIndex()
	for i := range w.recs {
		idx.ReplaceOrInsert(&w.recs[i])
	}
	var table bytes.Buffer
	idx.Ascend(func(rec *brickRecord) bool {
		w.err = binary.Write(&table, binary.LittleEndian, *rec)
		return w.err == nil
	})
	if w.err != nil {
		w.f.Close()
		return w.err
	}
	if _, err := w.f.Write(table.Bytes()); err != nil {
		w.f.Close()
		return fmt.Errorf("rawvol: write brick table: %w", err)
	}

	var flags uint32
	if w.cfg.BigEndian {
		flags |= flagBigEndian
	}
	hdr := fileHeader{
		BitWidth:   w.cfg.BitWidth,
		Components: w.cfg.Components,
		Flags:      flags,
		MinValue:   w.cfg.MinValue,
		MaxValue:   w.cfg.MaxValue,
		TableOff:   w.off,
		BrickCount: uint32(idx.Len()),
	}
	var hbuf bytes.Buffer
	hbuf.WriteString(magic)
	if err := binary.Write(&hbuf, binary.LittleEndian, hdr); err != nil {
		w.f.Close()
		return fmt.Errorf("rawvol: encode header: %w", err)
	}
	if _, err := w.f.WriteAt(hbuf.Bytes(), 0); err != nil {
		w.f.Close()
		return fmt.Errorf("rawvol: write header: %w", err)
	}
	return w.f.Close()
}
