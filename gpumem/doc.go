// Package gpumem implements the GPU memory manager: the component that
// decides which bricks of which datasets are resident as GPU textures,
// reuses or evicts texture allocations under memory pressure, and shares
// datasets, simple textures and transfer functions across renderer
// instances.
//
// One [Manager] is created per GPU device and injected into every
// renderer at construction. Renderers identify themselves with an opaque
// requester value; the manager reference-counts open datasets per
// requester and brick residency per access.
//
// # Brick requests
//
// A brick request is parameterized by (dataset, key, [VolumeFlags]) plus
// the caller's frame and intra-frame counters. [Manager.GetVolume]
// resolves it in order: an existing entry for exactly this request is
// accessed; otherwise the least recently used unused entry of the same
// shape and flags is refilled in place; otherwise a new entry is
// allocated, evicting unused entries if budgets require it. Access
// returns a [VolumeLease]; releasing the lease is the only way to give
// the brick back.
//
// The manager is safe for concurrent use, but the intended calling
// model is synchronous: each renderer's loop calls Get/Release in
// sequence. Frame counters must be monotonically non-decreasing across
// a render session for the recency policy to behave.
package gpumem
