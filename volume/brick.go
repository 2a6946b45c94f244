package volume

import "fmt"

// BrickKey identifies one brick of a multi-resolution dataset: the
// resolution level it belongs to and its index within that level's brick
// enumeration. Keys are immutable values and totally ordered, LOD major.
//
// The ordering is consistent with the dataset's own brick enumeration:
// datasets hand out indices in enumeration order within each level.
type BrickKey struct {
	// LOD is the level of detail. Level 0 is the finest resolution.
	LOD uint32

	// Index is the brick's position within the level's enumeration.
	Index uint64
}

// Less reports whether k orders before other.
func (k BrickKey) Less(other BrickKey) bool {
	if k.LOD != other.LOD {
		return k.LOD < other.LOD
	}
	return k.Index < other.Index
}

// Compare returns -1, 0 or +1 depending on the order of k and other.
func (k BrickKey) Compare(other BrickKey) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return +1
	default:
		return 0
	}
}

// String returns a compact "lod/index" form for log output.
func (k BrickKey) String() string {
	return fmt.Sprintf("%d/%d", k.LOD, k.Index)
}

// Dims holds the voxel counts of a brick along each axis.
type Dims struct {
	X, Y, Z uint32
}

// Elems returns the total number of voxels, X*Y*Z.
func (d Dims) Elems() uint64 {
	return uint64(d.X) * uint64(d.Y) * uint64(d.Z)
}

// Bytes returns the raw byte footprint of the brick for the given sample
// bit width and component count.
func (d Dims) Bytes(bitWidth, components uint32) uint64 {
	return d.Elems() * uint64(bitWidth/8) * uint64(components)
}

// String returns the dimensions as "XxYxZ".
func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}
