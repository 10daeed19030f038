package buffer

// Ring is a fixed-capacity FIFO that overwrites its oldest entry when full.
// It is not safe for concurrent use; callers hold their own lock.
type Ring[T any] struct {
	entries []T
	start   int
	count   int
}

func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		size = 1
	}
	return &Ring[T]{
		entries: make([]T, size),
	}
}

func (r *Ring[T]) Add(entry T) {
	if r == nil || len(r.entries) == 0 {
		return
	}

	if r.count < len(r.entries) {
		index := (r.start + r.count) % len(r.entries)
		r.entries[index] = entry
		r.count++
		return
	}

	r.entries[r.start] = entry
	r.start = (r.start + 1) % len(r.entries)
}

func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.count
}

func (r *Ring[T]) Cap() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// List returns every stored entry, oldest first.
func (r *Ring[T]) List() []T {
	return r.Last(0)
}

// Last returns the newest count entries, oldest first. A count of zero or
// more than Len returns everything.
func (r *Ring[T]) Last(count int) []T {
	if r == nil || r.count == 0 {
		return nil
	}
	if count <= 0 || count > r.count {
		count = r.count
	}

	out := make([]T, count)
	offset := r.count - count
	for i := 0; i < count; i++ {
		index := (r.start + offset + i) % len(r.entries)
		out[i] = r.entries[index]
	}
	return out
}

// Reset drops all entries without releasing capacity.
func (r *Ring[T]) Reset() {
	if r == nil {
		return
	}
	var zero T
	for i := range r.entries {
		r.entries[i] = zero
	}
	r.start = 0
	r.count = 0
}
