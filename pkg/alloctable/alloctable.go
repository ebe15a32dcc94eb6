package alloctable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/henderiw/rangeset/pkg/rangeset"
)

type Table[T1 any] interface {
	Get(id int64) (T1, error)
	Claim(id int64, d T1) error
	ClaimDynamic(d T1) (int64, error)
	ClaimRange(rng string, d T1) error
	ClaimSize(size int64, d T1) error
	Release(id int64) error
	Update(id int64, d T1) error

	Iterate() *Iterator[T1]

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)
	FindFreeRange(start, size int64) (rangeset.Range[int64], error)
	FindFreeSize(size int64) ([]int64, error)

	UsedRanges() rangeset.RangeSet[int64]
	FreeRanges() rangeset.RangeSet[int64]

	GetAll() map[int64]T1
}

// ValidationFn restricts the ids claimable in a table beyond its
// bound. Ids rejected by the function can only be claimed as init
// entries.
type ValidationFn func(id int64) error

func New[T1 any](bound rangeset.Range[int64], initEntries map[int64]T1, v ValidationFn) (Table[T1], error) {
	if !bound.IsValid() {
		return nil, fmt.Errorf("invalid bound %s, from must be <= to", bound)
	}
	r := &table[T1]{
		m:          new(sync.RWMutex),
		table:      map[int64]T1{},
		bound:      bound,
		validateFn: v,
	}

	var errm error
	for id, d := range initEntries {
		if err := r.add(id, d, true); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type table[T1 any] struct {
	m          *sync.RWMutex
	table      map[int64]T1
	bound      rangeset.Range[int64]
	validateFn ValidationFn
}

func (r *table[T1]) validate(id int64, init bool) error {
	if !r.bound.Contains(id) {
		return fmt.Errorf("id %d is outside the table bound %s", id, r.bound)
	}
	if r.validateFn != nil && !init {
		if err := r.validateFn(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T1]) Get(id int64) (T1, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	var d T1

	if err := r.validate(id, false); err != nil {
		return d, err
	}

	d, ok := r.table[id]
	if !ok {
		return d, fmt.Errorf("no match found for: %v", id)
	}
	return d, nil
}

func (r *table[T1]) Claim(id int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.add(id, d, false)
}

func (r *table[T1]) ClaimDynamic(d T1) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.findFree()
	if err != nil {
		return 0, err
	}
	if err := r.add(id, d, false); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *table[T1]) ClaimRange(rng string, d T1) error {
	claimRange, err := rangeset.ParseRange[int64](rng)
	if err != nil {
		return err
	}

	r.m.Lock()
	defer r.m.Unlock()

	if _, err := r.findFreeRange(claimRange.From(), int64(claimRange.Size())); err != nil {
		return err
	}
	for id := claimRange.From(); ; id++ {
		// getting an error is unlikely as we have a lock
		if err := r.add(id, d, false); err != nil {
			return err
		}
		if id == claimRange.To() {
			break
		}
	}
	return nil
}

func (r *table[T1]) ClaimSize(size int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	ids, err := r.findFreeSize(size)
	if err != nil {
		return err
	}
	for _, id := range ids {
		// getting an error is unlikely as we have a lock
		if err := r.add(id, d, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T1]) Release(id int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.delete(id)
}

func (r *table[T1]) Update(id int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.update(id, d)
}

func (r *table[T1]) Iterate() *Iterator[T1] {
	r.m.RLock()
	defer r.m.RUnlock()

	return newIterator(r.getAll())
}

func (r *table[T1]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.table)
}

func (r *table[T1]) Has(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.table[id]
	return ok
}

func (r *table[T1]) IsFree(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.isFree(id)
}

func (r *table[T1]) isFree(id int64) bool {
	_, ok := r.table[id]
	return !ok
}

func (r *table[T1]) FindFree() (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFree()
}

// findFree returns the lowest free id in the bound that passes
// validation.
func (r *table[T1]) findFree() (int64, error) {
	for _, free := range r.freeRanges() {
		for id := free.From(); ; id++ {
			if r.validate(id, false) == nil {
				return id, nil
			}
			if id == free.To() {
				break
			}
		}
	}
	return 0, fmt.Errorf("no free entry found")
}

func (r *table[T1]) FindFreeRange(start, size int64) (rangeset.Range[int64], error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeRange(start, size)
}

// findFreeRange returns the range of size ids starting at start when
// every id in it is free, an error otherwise.
func (r *table[T1]) findFreeRange(start, size int64) (rangeset.Range[int64], error) {
	var free rangeset.Range[int64]
	if size < 1 {
		return free, fmt.Errorf("size %d must be at least 1", size)
	}
	end := start + size - 1
	if end < start {
		return free, fmt.Errorf("size %d overflows from start %d", size, start)
	}
	free = rangeset.RangeFrom(start, end)
	if !r.bound.ContainsRange(free) {
		return free, fmt.Errorf("range %s is outside the table bound %s", free, r.bound)
	}
	if used := r.usedRanges().Clip(free); len(used) > 0 {
		return free, fmt.Errorf("range %s has %d entries in use", free, used.Count())
	}
	return free, nil
}

func (r *table[T1]) FindFreeSize(size int64) ([]int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeSize(size)
}

// findFreeSize returns the lowest size free ids that pass validation,
// not necessarily consecutive.
func (r *table[T1]) findFreeSize(size int64) ([]int64, error) {
	if size < 1 {
		return nil, fmt.Errorf("size %d must be at least 1", size)
	}
	if uint64(size) > r.bound.Size() {
		return nil, fmt.Errorf("size %d is bigger than the table bound %s", size, r.bound)
	}
	ids := make([]int64, 0, size)
	for _, free := range r.freeRanges() {
		for id := free.From(); ; id++ {
			if r.validate(id, false) == nil {
				ids = append(ids, id)
				if int64(len(ids)) == size {
					return ids, nil
				}
			}
			if id == free.To() {
				break
			}
		}
	}
	return nil, fmt.Errorf("could not find %d free entries", size)
}

func (r *table[T1]) UsedRanges() rangeset.RangeSet[int64] {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.usedRanges()
}

func (r *table[T1]) usedRanges() rangeset.RangeSet[int64] {
	ids := make([]int64, 0, len(r.table))
	for id := range r.table {
		ids = append(ids, id)
	}
	return rangeset.BuildRanges(ids)
}

func (r *table[T1]) FreeRanges() rangeset.RangeSet[int64] {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.freeRanges()
}

func (r *table[T1]) freeRanges() rangeset.RangeSet[int64] {
	// the bound was validated in New, Complement cannot fail here
	free, _ := r.usedRanges().Complement(r.bound)
	return free
}

func (r *table[T1]) add(id int64, d T1, init bool) error {
	if err := r.validate(id, init); err != nil {
		return err
	}
	if !r.isFree(id) {
		return fmt.Errorf("entry %d already exists", id)
	}
	r.table[id] = d
	return nil
}

func (r *table[T1]) update(id int64, d T1) error {
	if err := r.validate(id, false); err != nil {
		return err
	}
	if r.isFree(id) {
		return fmt.Errorf("entry %d not found", id)
	}
	r.table[id] = d
	return nil
}

func (r *table[T1]) delete(id int64) error {
	if err := r.validate(id, false); err != nil {
		return err
	}
	delete(r.table, id)
	return nil
}

func (r *table[T1]) GetAll() map[int64]T1 {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.getAll()
}

func (r *table[T1]) getAll() map[int64]T1 {
	entries := make(map[int64]T1, len(r.table))
	for id, d := range r.table {
		entries[id] = d
	}
	return entries
}
