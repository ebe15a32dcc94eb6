package rangeset

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// SetBuilder accumulates values and ranges to add or remove and builds
// a normalized RangeSet from them. The zero value is an empty builder
// ready for use. A SetBuilder is not safe for concurrent use.
type SetBuilder[T constraints.Integer] struct {
	in   []Range[T]
	out  []Range[T]
	errs error
}

// Add records v for addition.
func (b *SetBuilder[T]) Add(v T) {
	b.AddRange(RangeOf(v))
}

// AddRange records r for addition. Invalid ranges are recorded as
// errors and reported by Set.
func (b *SetBuilder[T]) AddRange(r Range[T]) {
	if !r.IsValid() {
		b.errs = errors.Join(b.errs, fmt.Errorf("add of invalid range %s", r))
		return
	}
	// If there are any removals pending, fold them in first so they do
	// not remove values of r.
	if len(b.out) > 0 {
		b.normalize()
	}
	b.in = append(b.in, r)
}

// AddSet records every range of s for addition.
func (b *SetBuilder[T]) AddSet(s RangeSet[T]) {
	for _, r := range s {
		b.AddRange(r)
	}
}

// Remove records v for removal.
func (b *SetBuilder[T]) Remove(v T) {
	b.RemoveRange(RangeOf(v))
}

// RemoveRange records r for removal. Invalid ranges are recorded as
// errors and reported by Set.
func (b *SetBuilder[T]) RemoveRange(r Range[T]) {
	if !r.IsValid() {
		b.errs = errors.Join(b.errs, fmt.Errorf("remove of invalid range %s", r))
		return
	}
	b.out = append(b.out, r)
}

// RemoveSet records every range of s for removal.
func (b *SetBuilder[T]) RemoveSet(s RangeSet[T]) {
	for _, r := range s {
		b.RemoveRange(r)
	}
}

// Set returns the normalized RangeSet of all additions minus all
// removals, together with the joined errors of any invalid ranges
// recorded since the last call. The returned set reflects all valid
// additions and removals even when an error is returned. The builder
// keeps its state and can be used further.
func (b *SetBuilder[T]) Set() (RangeSet[T], error) {
	b.normalize()
	set := append(RangeSet[T](nil), b.in...)
	err := b.errs
	b.errs = nil
	return set, err
}

// normalize folds the pending removals into the additions: in becomes
// the minimal sorted list of ranges covering the additions minus the
// removals, out becomes empty.
func (b *SetBuilder[T]) normalize() {
	in, ok := mergeRanges(b.in)
	if !ok {
		return
	}
	out, ok := mergeRanges(b.out)
	if !ok {
		return
	}

	// in and out are sorted ascending and have no overlaps within
	// themselves, so a single parallel walk suffices.
	min := make([]Range[T], 0, len(in))
	for len(in) > 0 && len(out) > 0 {
		rin, rout := in[0], out[0]
		switch {
		case rout.entirelyBefore(rin):
			// "out" is entirely before "in".
			//
			//    out         in
			// f-------t   f-------t
			out = out[1:]
		case rin.entirelyBefore(rout):
			// "in" is entirely before "out".
			//
			//    in         out
			// f------t   f-------t
			min = append(min, rin)
			in = in[1:]
		case rin.coveredBy(rout):
			// "out" entirely covers "in".
			//
			//       out
			// f-------------t
			//    f------t
			//       in
			in = in[1:]
		case rout.inMiddleOf(rin):
			// "in" entirely covers "out" without touching its bounds,
			// so the bound arithmetic below cannot overflow.
			//
			//       in
			// f-------------t
			//    f------t
			//       out
			min = append(min, Range[T]{from: rin.from, to: rout.from - 1})
			// Adjust in[0], not rin, so the next iteration sees the
			// remainder.
			in[0].from = rout.to + 1
			out = out[1:]
		case rout.overlapsStartOf(rin):
			// "out" overlaps the start of "in".
			//
			//   out
			// f------t
			//    f------t
			//       in
			in[0].from = rout.to + 1
			// Can't move in[0] to min yet, the next out might overlap
			// it as well. Only drop rout.
			out = out[1:]
		case rout.overlapsEndOf(rin):
			// "out" overlaps the end of "in".
			//
			//           out
			//        f------t
			//    f------t
			//       in
			min = append(min, Range[T]{from: rin.from, to: rout.from - 1})
			in = in[1:]
		default:
			// The cases above cover all the ways in and out can
			// relate to each other, getting here means the merge
			// invariants are broken.
			panic("unexpected additional overlap scenario")
		}
	}
	// Ran out of removals before the end of the additions.
	min = append(min, in...)

	b.in = min
	b.out = nil
}

// mergeRanges returns the minimal sorted list of ranges covering rr.
// Overlapping and adjacent ranges merge into one. The second return
// value is false when rr contains an invalid range.
func mergeRanges[T constraints.Integer](rr []Range[T]) ([]Range[T], bool) {
	switch len(rr) {
	case 0:
		return nil, true
	case 1:
		if !rr[0].IsValid() {
			return nil, false
		}
		return []Range[T]{rr[0]}, true
	}

	sort.Slice(rr, func(i, j int) bool { return rr[i].less(rr[j]) })

	max := maxValue[T]()
	out := make([]Range[T], 1, len(rr))
	out[0] = rr[0]
	for _, r := range rr[1:] {
		prev := &out[len(out)-1]
		switch {
		case !r.IsValid():
			// Invalid ranges make no sense to merge, refuse to
			// perform.
			return nil, false
		case prev.to != max && prev.to+1 == r.from:
			// prev and r touch, merge them.
			//
			//   prev    r
			// f------tf------t
			prev.to = r.to
		case prev.to < r.from:
			// No overlap and not adjacent (per previous case), no
			// merging possible.
			//
			//   prev       r
			// f------t  f------t
			out = append(out, r)
		case prev.to < r.to:
			// Partial overlap, update prev.
			//
			//   prev
			// f------t
			//      f------t
			//         r
			prev.to = r.to
		default:
			// r is entirely contained in prev, nothing to do.
		}
	}
	return out, true
}
