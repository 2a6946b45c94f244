// Package volren provides the core resource management layer of an
// interactive volume-rendering application.
//
// # Overview
//
// Large volumetric datasets do not fit in GPU memory. volren manages the
// residency of dataset sub-blocks ("bricks") as GPU textures: it decides
// which bricks are resident at any moment, reuses or evicts texture
// allocations under memory pressure, reformats raw voxel data for upload,
// and shares open datasets, transfer functions and simple 2D textures
// across multiple concurrent renderer instances.
//
// # Architecture
//
// The library is organized into:
//   - volume: dataset abstraction (BrickKey, Dims, Dataset) and the
//     file-format opener registry, with the memvol and rawvol backends
//   - texture: GPU resource wrappers (Volume, Texture2D, Texture1D) over
//     an abstract Device; texture/native backs Device with gogpu/wgpu
//   - gpumem: the memory manager itself: dataset registry, brick cache
//     with LRU replacement, padding transform, upload hub, simple texture
//     cache and transfer-function storage
//   - transfer: 1D/2D transfer function data
//
// Renderers obtain everything through a gpumem.Manager injected at
// construction; there is no global state.
//
// # Quick Start
//
//	dev := texture.NewSoftwareDevice()
//	man := gpumem.NewManager(dev, nil)
//
//	ds, err := man.LoadDataset("head.rvf", renderer)
//	if err != nil { ... }
//
//	lease, err := man.GetVolume(ds, key, gpumem.VolumeFlags{PadToPowerOfTwo: true}, intra, frame)
//	if err != nil { ... }
//	defer lease.Release()
//	bind(lease.Volume())
//
// This package itself only carries the shared logger configuration; see
// [SetLogger].
package volren
