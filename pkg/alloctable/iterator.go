package alloctable

import "sort"

// Iterator walks table entries in ascending id order. It operates on a
// snapshot taken at creation time, so the table can change while the
// iteration is in progress.
type Iterator[T1 any] struct {
	current int
	keys    []int64
	entries map[int64]T1
}

func newIterator[T1 any](entries map[int64]T1) *Iterator[T1] {
	keys := make([]int64, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	return &Iterator[T1]{current: -1, keys: keys, entries: entries}
}

func (r *Iterator[T1]) Next() bool {
	r.current++
	return r.current < len(r.keys)
}

func (r *Iterator[T1]) ID() int64 {
	return r.keys[r.current]
}

func (r *Iterator[T1]) Value() T1 {
	return r.entries[r.keys[r.current]]
}
