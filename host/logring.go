package host

// DefaultLogCapacity is the number of guest log bytes a session retains.
const DefaultLogCapacity = 1000

// LogRing is a fixed-size byte ring that keeps the newest bytes written.
type LogRing struct {
	buf     []byte
	start   int
	size    int
	dropped uint64
}

// NewLogRing returns a ring holding at most capacity bytes.
func NewLogRing(capacity int) *LogRing {
	return &LogRing{buf: make([]byte, max(capacity, 0))}
}

// Write appends p, discarding the oldest bytes on overflow. It never fails.
func (r *LogRing) Write(p []byte) (int, error) {
	n := len(p)
	c := len(r.buf)
	if c == 0 {
		r.dropped += uint64(n)
		return n, nil
	}
	if len(p) > c {
		r.dropped += uint64(len(p) - c)
		p = p[len(p)-c:]
	}
	if over := r.size + len(p) - c; over > 0 {
		r.start = (r.start + over) % c
		r.size -= over
		r.dropped += uint64(over)
	}
	end := (r.start + r.size) % c
	k := copy(r.buf[end:], p)
	copy(r.buf, p[k:])
	r.size += len(p)
	return n, nil
}

// Bytes returns the retained bytes, oldest first.
func (r *LogRing) Bytes() []byte {
	out := make([]byte, r.size)
	k := copy(out, r.buf[r.start:min(r.start+r.size, len(r.buf))])
	copy(out[k:], r.buf[:r.size-k])
	return out
}

// Len returns the number of retained bytes.
func (r *LogRing) Len() int { return r.size }

// Dropped returns how many bytes were discarded to make room.
func (r *LogRing) Dropped() uint64 { return r.dropped }

// Reset empties the ring.
func (r *LogRing) Reset() {
	r.start, r.size, r.dropped = 0, 0, 0
}
