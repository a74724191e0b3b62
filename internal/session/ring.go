package session

// ring keeps the newest limit items; limit 0 keeps everything.
type ring[T any] struct {
	buf   []T
	start int
	limit int
}

func newRing[T any](limit int) *ring[T] {
	if limit < 0 {
		limit = 0
	}
	return &ring[T]{limit: limit}
}

func (r *ring[T]) Len() int {
	return len(r.buf)
}

func (r *ring[T]) Push(v T) {
	if r.limit == 0 || len(r.buf) < r.limit {
		r.buf = append(r.buf, v)
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % r.limit
}

// At returns the i-th oldest item.
func (r *ring[T]) At(i int) T {
	return r.buf[(r.start+i)%len(r.buf)]
}

// Items returns a copy, oldest first.
func (r *ring[T]) Items() []T {
	out := make([]T, len(r.buf))
	n := copy(out, r.buf[r.start:])
	copy(out[n:], r.buf[:r.start])
	return out
}

// Keep drops all but the newest n items.
func (r *ring[T]) Keep(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(r.buf) {
		return
	}
	items := r.Items()
	r.buf = append(r.buf[:0], items[len(items)-n:]...)
	r.start = 0
}

func (r *ring[T]) Reset() {
	r.buf = nil
	r.start = 0
}
