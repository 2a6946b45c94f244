package gpumem

// UploadHub is a reusable staging buffer for brick uploads. It avoids a
// per-brick heap allocation for every brick whose raw footprint fits
// within 4x the IO subsystem's declared in-core size; larger bricks fall
// back to a private per-entry buffer.
//
// The hub is scratch memory: its contents are only valid for the
// duration of a single upload. It is a performance optimization, not a
// correctness requirement; a nil hub simply makes every entry use a
// private buffer.
type UploadHub struct {
	buf []byte
}

// NewUploadHub allocates a hub sized to 4x the given in-core size hint.
// A hint of 0 returns a hub that never accepts bricks.
func NewUploadHub(incoreSize uint64) *UploadHub {
	return &UploadHub{buf: make([]byte, incoreSize*4)}
}

// Fits reports whether a brick of n raw bytes can be staged in the hub.
func (h *UploadHub) Fits(n uint64) bool {
	return h != nil && len(h.buf) > 0 && n <= uint64(len(h.buf))
}

// Bytes returns the first n bytes of the hub for staging.
// Callers must have checked Fits(n).
func (h *UploadHub) Bytes(n uint64) []byte {
	return h.buf[:n]
}

// Size returns the hub capacity in bytes.
func (h *UploadHub) Size() uint64 {
	if h == nil {
		return 0
	}
	return uint64(len(h.buf))
}
