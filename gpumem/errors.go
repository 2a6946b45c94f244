package gpumem

import "errors"

// Manager errors.
var (
	// ErrOutOfGPUMemory is returned when a brick cannot be made resident
	// within the configured budgets and no unused entry can be evicted.
	// The renderer degrades by skipping the brick at this resolution.
	ErrOutOfGPUMemory = errors.New("gpumem: out of GPU memory")

	// ErrStagingTooLarge is returned when a brick's padded staging
	// buffer would exceed MaxPaddedBytes. Resident entries are
	// unaffected.
	ErrStagingTooLarge = errors.New("gpumem: staging buffer too large")

	// ErrUnsupportedDownsample is returned when DownsampleTo8Bit is
	// requested for data that is neither 8 nor 16 bits wide.
	ErrUnsupportedDownsample = errors.New("gpumem: downsampling requires 8- or 16-bit data")

	// ErrDatasetNotOpen is returned when a brick is requested for a
	// dataset that is not registered with the manager.
	ErrDatasetNotOpen = errors.New("gpumem: dataset not open")
)
