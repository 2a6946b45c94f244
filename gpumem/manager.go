package gpumem

import (
	"fmt"
	"sync"

	units "github.com/docker/go-units"

	"github.com/gogpu/volren"
	"github.com/gogpu/volren/internal/mathutil"
	"github.com/gogpu/volren/texture"
	"github.com/gogpu/volren/volume"
)

// Requester is the opaque identity of a renderer instance issuing cache
// requests. It is only ever compared for equality, so any comparable
// value works; renderers typically pass themselves.
type Requester any

// Config configures a Manager. The zero value disables all budgets and
// the upload hub.
type Config struct {
	// PoolBudget limits the total device bytes of the volume brick
	// pool. When an allocation would exceed it, unused entries are
	// evicted least-recently-used first. 0 means unlimited.
	PoolBudget uint64

	// DatasetBudget limits the device bytes resident per dataset.
	// 0 means unlimited.
	DatasetBudget uint64

	// IncoreSize is the IO subsystem's in-core size hint. The upload
	// hub is sized to 4x this value; 0 disables the hub and every brick
	// stages through a private buffer.
	IncoreSize uint64
}

// ParseBudget converts a human-readable memory size ("512MB", "1.5GiB")
// to bytes for use in Config budgets.
func ParseBudget(s string) (uint64, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("gpumem: bad budget %q: %w", s, err)
	}
	return uint64(n), nil
}

// Manager owns all GPU-resident cache state: the registry of open
// datasets, the volume brick pool, the simple texture cache and the
// transfer function entries. One Manager serves all renderer instances
// of one GPU device; it is injected at renderer construction.
type Manager struct {
	mu  sync.Mutex
	dev texture.Device
	cfg Config
	hub *UploadHub

	datasets []*datasetEntry
	volumes  []*volumeEntry
	simple   []*simpleTexture
	trans1D  []*trans1DEntry
	trans2D  []*trans2DEntry
}

// datasetEntry tracks one open dataset and the requesters using it.
// A requester registering twice is counted twice and must free twice.
type datasetEntry struct {
	ds    volume.Dataset
	users []Requester
}

// NewManager creates a manager on the given device. cfg may be nil for
// defaults (no budgets, no hub).
func NewManager(dev texture.Device, cfg *Config) *Manager {
	m := &Manager{dev: dev}
	if cfg != nil {
		m.cfg = *cfg
	}
	if m.cfg.IncoreSize > 0 {
		m.hub = NewUploadHub(m.cfg.IncoreSize)
	}
	return m
}

// LoadDataset opens the dataset file and registers requester as a user.
// If a dataset with this filename is already open it is reused without
// touching storage. Opening is the only point in the manager that may
// block on disk.
func (m *Manager) LoadDataset(filename string, requester Requester) (volume.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, de := range m.datasets {
		if de.ds.Filename() == filename {
			volren.Logger().Debug("reusing dataset", "file", filename)
			de.users = append(de.users, requester)
			return de.ds, nil
		}
	}

	ds, err := volume.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gpumem: load dataset: %w", err)
	}
	volren.Logger().Info("dataset opened", "file", filename)
	m.datasets = append(m.datasets, &datasetEntry{ds: ds, users: []Requester{requester}})
	return ds, nil
}

// RegisterDataset adds an already constructed dataset (for example an
// in-memory volume) to the registry, with the same reuse-by-filename
// semantics as LoadDataset.
func (m *Manager) RegisterDataset(ds volume.Dataset, requester Requester) volume.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, de := range m.datasets {
		if de.ds.Filename() == ds.Filename() {
			de.users = append(de.users, requester)
			return de.ds
		}
	}
	m.datasets = append(m.datasets, &datasetEntry{ds: ds, users: []Requester{requester}})
	return ds
}

// FreeDataset removes one registration of requester from the dataset.
// When the last registration is gone the dataset's brick entries are
// freed, the dataset is closed and dropped from the registry. Freeing a
// dataset that is not open, or from a requester that never registered,
// is a diagnostic and changes nothing.
func (m *Manager) FreeDataset(ds volume.Dataset, requester Requester) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, de := range m.datasets {
		if de.ds != ds {
			continue
		}
		for j, u := range de.users {
			if u != requester {
				continue
			}
			de.users = append(de.users[:j], de.users[j+1:]...)
			if len(de.users) > 0 {
				volren.Logger().Debug("dataset still in use", "file", ds.Filename(), "users", len(de.users))
				return
			}
			m.freeAssociatedVolumes(ds)
			if err := ds.Close(); err != nil {
				volren.Logger().Warn("closing dataset", "file", ds.Filename(), "err", err)
			}
			m.datasets = append(m.datasets[:i], m.datasets[i+1:]...)
			volren.Logger().Info("dataset released", "file", ds.Filename())
			return
		}
		volren.Logger().Warn("dataset not registered by requester", "file", ds.Filename())
		return
	}
	volren.Logger().Warn("dataset not found", "file", ds.Filename())
}

// freeAssociatedVolumes drops all brick entries of a dataset. Entries
// still held by a renderer are freed anyway, since the dataset is going away,
// but that is a caller bug worth a diagnostic.
func (m *Manager) freeAssociatedVolumes(ds volume.Dataset) {
	kept := m.volumes[:0]
	for _, e := range m.volumes {
		if e.ds != ds {
			kept = append(kept, e)
			continue
		}
		if e.userCount > 0 {
			volren.Logger().Warn("freeing brick still in use", "brick", e.key, "users", e.userCount)
		}
		e.freeTexture()
	}
	m.volumes = kept
}

// isOpen reports whether ds is registered.
func (m *Manager) isOpen(ds volume.Dataset) bool {
	for _, de := range m.datasets {
		if de.ds == ds {
			return true
		}
	}
	return false
}

// GetVolume makes the brick named by (ds, key, flags) resident and
// hands it to the caller as a lease. intraFrame and frame are the
// caller's current render counters; they time-stamp the entry for the
// replacement policy and must be monotonically non-decreasing.
//
// Resolution order: an entry already bound to exactly this request is
// shared; otherwise the least recently used unused entry with the same
// brick shape and flags is refilled in place; otherwise a new entry is
// allocated, evicting unused entries if a budget requires it.
func (m *Manager) GetVolume(ds volume.Dataset, key volume.BrickKey, flags VolumeFlags, intraFrame, frame uint64) (*VolumeLease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isOpen(ds) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotOpen, ds.Filename())
	}

	for _, e := range m.volumes {
		if e.equals(ds, key, flags) {
			volren.Logger().Debug("brick cache hit", "brick", key)
			return m.lease(e, intraFrame, frame), nil
		}
	}

	dims, err := ds.BrickVoxelCounts(key)
	if err != nil {
		return nil, err
	}

	// Reject unsupported shapes before any entry is touched.
	est, err := m.estimateSize(ds, dims, flags)
	if err != nil {
		return nil, err
	}

	if e := m.bestMatch(ds, dims, flags); e != nil {
		volren.Logger().Debug("replacing brick in place", "old", e.key, "new", key)
		rerr := e.refill(key, m.hub)
		if rerr == nil {
			return m.lease(e, intraFrame, frame), nil
		}
		// The entry's contents are unreliable now; drop it and
		// allocate fresh.
		volren.Logger().Warn("brick replace failed", "brick", key, "err", rerr)
		m.removeEntry(e)
	}

	if err := m.makeRoom(ds, est); err != nil {
		return nil, err
	}

	e := &volumeEntry{ds: ds, key: key, flags: flags}
	if err := e.build(m.dev, m.hub); err != nil {
		return nil, err
	}
	m.volumes = append(m.volumes, e)
	volren.Logger().Debug("brick uploaded", "brick", key, "bytes", e.gpuSize(), "hub", e.usingHub)
	return m.lease(e, intraFrame, frame), nil
}

// bestMatch finds the least recently used unused entry of ds with the
// given brick shape and flags. Recency is frame counter first, position
// within the frame second; exact ties fall to the earlier entry in the
// pool.
func (m *Manager) bestMatch(ds volume.Dataset, dims volume.Dims, flags VolumeFlags) *volumeEntry {
	var best *volumeEntry
	for _, e := range m.volumes {
		if e.ds != ds || e.flags != flags || e.userCount > 0 || !e.matchDims(dims) {
			continue
		}
		if best == nil || e.olderThan(best.frame, best.intraFrame) {
			best = e
		}
	}
	return best
}

// estimateSize predicts the device byte footprint of a new entry, and
// rejects unsupported shape/format combinations up front.
func (m *Manager) estimateSize(ds volume.Dataset, dims volume.Dims, flags VolumeFlags) (uint64, error) {
	bitWidth := ds.BitWidth()
	if flags.DownsampleTo8Bit && bitWidth != 8 {
		if bitWidth != 16 {
			return 0, fmt.Errorf("%w: %d bits", ErrUnsupportedDownsample, bitWidth)
		}
		bitWidth = 8
	}
	format, err := texture.SelectFormat(bitWidth, ds.ComponentCount())
	if err != nil {
		return 0, err
	}
	if flags.PadToPowerOfTwo {
		dims = volume.Dims{
			X: mathutil.NextPow2(dims.X),
			Y: mathutil.NextPow2(dims.Y),
			Z: mathutil.NextPow2(dims.Z),
		}
	}
	return dims.Elems() * uint64(format.GPUBytesPerElement()), nil
}

// makeRoom evicts unused entries, least recently used first, until the
// pool and per-dataset budgets admit an allocation of est bytes.
func (m *Manager) makeRoom(ds volume.Dataset, est uint64) error {
	if m.cfg.PoolBudget > 0 {
		for m.poolSize()+est > m.cfg.PoolBudget {
			if !m.evictOne(nil) {
				return fmt.Errorf("%w: need %d bytes, pool budget %d", ErrOutOfGPUMemory, est, m.cfg.PoolBudget)
			}
		}
	}
	if m.cfg.DatasetBudget > 0 {
		for m.datasetSize(ds)+est > m.cfg.DatasetBudget {
			if !m.evictOne(ds) {
				return fmt.Errorf("%w: need %d bytes, dataset budget %d", ErrOutOfGPUMemory, est, m.cfg.DatasetBudget)
			}
		}
	}
	return nil
}

// evictOne frees the least recently used unused entry, optionally
// restricted to one dataset. It reports whether an entry was evicted.
func (m *Manager) evictOne(ds volume.Dataset) bool {
	var victim *volumeEntry
	for _, e := range m.volumes {
		if e.userCount > 0 || (ds != nil && e.ds != ds) {
			continue
		}
		if victim == nil || e.olderThan(victim.frame, victim.intraFrame) {
			victim = e
		}
	}
	if victim == nil {
		return false
	}
	volren.Logger().Debug("evicting brick", "brick", victim.key, "bytes", victim.gpuSize())
	m.removeEntry(victim)
	return true
}

// removeEntry frees an entry's GPU resource and drops it from the pool.
func (m *Manager) removeEntry(e *volumeEntry) {
	e.freeTexture()
	for i, o := range m.volumes {
		if o == e {
			m.volumes = append(m.volumes[:i], m.volumes[i+1:]...)
			return
		}
	}
}

func (m *Manager) lease(e *volumeEntry, intraFrame, frame uint64) *VolumeLease {
	vol := e.access(intraFrame, frame)
	return &VolumeLease{m: m, e: e, vol: vol}
}

// poolSize returns the device bytes of the volume brick pool.
func (m *Manager) poolSize() uint64 {
	var total uint64
	for _, e := range m.volumes {
		total += e.gpuSize()
	}
	return total
}

// datasetSize returns the device bytes resident for one dataset.
func (m *Manager) datasetSize(ds volume.Dataset) uint64 {
	var total uint64
	for _, e := range m.volumes {
		if e.ds == ds {
			total += e.gpuSize()
		}
	}
	return total
}

// GPUSize returns the total device byte footprint of everything the
// manager holds: volume bricks, simple textures and transfer function
// textures.
func (m *Manager) GPUSize() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.poolSize()
	for _, st := range m.simple {
		total += st.tex.GPUSize()
	}
	for _, te := range m.trans1D {
		total += te.tex.GPUSize()
	}
	for _, te := range m.trans2D {
		total += te.tex.GPUSize()
	}
	return total
}

// VolumeCount returns the number of brick entries in the pool.
func (m *Manager) VolumeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.volumes)
}

// DatasetCount returns the number of open datasets.
func (m *Manager) DatasetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.datasets)
}

// Close frees every resource the manager holds. Datasets still open are
// closed; leases handed out earlier become invalid.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.volumes {
		e.freeTexture()
	}
	m.volumes = nil
	for _, st := range m.simple {
		st.tex.Free()
	}
	m.simple = nil
	for _, te := range m.trans1D {
		te.tex.Free()
	}
	m.trans1D = nil
	for _, te := range m.trans2D {
		te.tex.Free()
	}
	m.trans2D = nil
	for _, de := range m.datasets {
		if err := de.ds.Close(); err != nil {
			volren.Logger().Warn("closing dataset", "file", de.ds.Filename(), "err", err)
		}
	}
	m.datasets = nil
}

// VolumeLease is a renderer's hold on a resident brick. Releasing the
// lease is the only way to give the brick back; an entry becomes a
// replacement or eviction candidate once every lease on it is released.
type VolumeLease struct {
	m        *Manager
	e        *volumeEntry
	vol      *texture.Volume
	released bool
}

// Volume returns the leased GPU resource. The volume stays valid until
// the lease is released.
func (l *VolumeLease) Volume() *texture.Volume { return l.vol }

// Release gives the brick back. Releasing twice is a diagnostic and
// changes nothing.
func (l *VolumeLease) Release() {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()

	if l.released {
		volren.Logger().Warn("volume lease released twice", "brick", l.e.key)
		return
	}
	l.released = true
	if l.e.userCount == 0 {
		volren.Logger().Warn("volume user count underflow", "brick", l.e.key)
		return
	}
	l.e.userCount--
}
