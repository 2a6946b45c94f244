// Package volume defines the dataset abstraction consumed by the GPU
// memory manager: brick identification, per-brick metadata queries and
// raw voxel access, plus a registry of file-format openers.
//
// A Dataset represents an open, possibly huge, file-backed
// multi-resolution volume. Implementations live in sub-packages
// (rawvol for the on-disk container, memvol for in-memory volumes);
// the manager only ever sees this interface.
package volume

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Common dataset errors.
var (
	// ErrUnknownFormat is returned by Open when no registered opener
	// claims the file's extension.
	ErrUnknownFormat = errors.New("volume: unknown dataset format")

	// ErrNoSuchBrick is returned when a BrickKey does not name a brick
	// of the dataset.
	ErrNoSuchBrick = errors.New("volume: no such brick")
)

// Dataset is an open multi-resolution volume.
//
// All metadata queries are cheap; only ReadBrick may touch storage.
// Implementations need not be safe for concurrent use; the memory
// manager serializes access.
type Dataset interface {
	// Filename returns the name the dataset was opened under. It is the
	// reuse key in the dataset registry and must be stable and unique
	// per logical dataset.
	Filename() string

	// BrickVoxelCounts returns the voxel dimensions of the brick named
	// by key, or ErrNoSuchBrick.
	BrickVoxelCounts(key BrickKey) (Dims, error)

	// BitWidth returns the sample width in bits (8, 16 or 32).
	BitWidth() uint32

	// ComponentCount returns the number of components per voxel.
	ComponentCount() uint32

	// Range returns the minimum and maximum sample value in the dataset,
	// used for quantization.
	Range() (min, max float64)

	// SameEndianness reports whether the stored byte order matches the
	// host. When false, multi-byte samples must be swapped before upload.
	SameEndianness() bool

	// ReadBrick reads the raw bytes of the brick named by key.
	// If dst has sufficient capacity it is reused; the returned slice is
	// always exactly the brick's byte length. This is the only call that
	// may block on storage I/O.
	ReadBrick(key BrickKey, dst []byte) ([]byte, error)

	// BrickKeys returns all brick keys in enumeration order.
	BrickKeys() []BrickKey

	// Close releases all storage associated with the dataset.
	Close() error
}

// Opener opens a dataset file. Openers are registered per file extension
// by format packages and invoked through Open.
type Opener func(filename string) (Dataset, error)

// registry holds registered dataset format openers, keyed by lower-case
// file extension including the dot (".rvf").
var (
	registryMu sync.RWMutex
	openers    = make(map[string]Opener)
)

// RegisterFormat registers an opener for the given file extension
// (e.g. ".rvf"). This is typically called from init() functions in
/// format packages:
//
//	import _ "github.com/gogpu/volren/volume/rawvol"
//
// If an opener for the extension is already registered, it is replaced.
func RegisterFormat(ext string, open Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	openers[strings.ToLower(ext)] = open
}

// Formats returns the registered file extensions in sorted order.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	exts := make([]string, 0, len(openers))
	for ext := range openers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open opens a dataset file using the opener registered for its
// extension. It returns ErrUnknownFormat if no opener matches.
func Open(filename string) (Dataset, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	registryMu.RLock()
	open, ok := openers[ext]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return open(filename)
}
