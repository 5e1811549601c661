// Package arena provides a fixed-capacity bump allocator for staging
// per-invocation scratch data, such as string bytes read from the input
// before they are written back out.
package arena

// Arena hands out non-overlapping slices of one backing region.
// Allocation never grows the region; it returns nil when exhausted.
type Arena[T any] struct {
	buf []T
	off int
}

// New returns an arena with room for n elements.
func New[T any](n int) *Arena[T] {
	return &Arena[T]{buf: make([]T, n)}
}

// Alloc returns a zeroed slice of n elements, or nil if the arena cannot
// satisfy the request. The slice is valid until Reset.
func (a *Arena[T]) Alloc(n int) []T {
	if n < 0 || n > len(a.buf)-a.off {
		return nil
	}
	s := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	clear(s)
	return s
}

// Reset releases every allocation.
func (a *Arena[T]) Reset() {
	a.off = 0
}

// Used returns the number of allocated elements.
func (a *Arena[T]) Used() int { return a.off }

// Cap returns the arena capacity.
func (a *Arena[T]) Cap() int { return len(a.buf) }
