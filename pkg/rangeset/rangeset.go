package rangeset

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// RangeSet is the minimal representation of a set of integer values as
// inclusive ranges: sorted ascending, pairwise disjoint and separated
// by at least one missing value, so no two ranges can merge.
type RangeSet[T constraints.Integer] []Range[T]

// BuildRanges coalesces values into the minimal sorted RangeSet
// covering exactly the distinct input values. Duplicates and input
// order do not matter. BuildRanges sorts values in place; callers that
// need the original order must pass a copy.
func BuildRanges[T constraints.Integer](values []T) RangeSet[T] {
	if len(values) == 0 {
		return nil
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	max := maxValue[T]()
	var set RangeSet[T]
	cur := RangeOf(values[0])
	for _, v := range values[1:] {
		switch {
		case v == cur.to:
			// duplicate
		case cur.to != max && v == cur.to+1:
			cur.to = v
		default:
			set = append(set, cur)
			cur = RangeOf(v)
		}
	}
	return append(set, cur)
}

// Complement coalesces values and returns the ranges of all values
// inside bound that the input does not cover. Values outside bound are
// ignored. The bound must be valid.
func Complement[T constraints.Integer](values []T, bound Range[T]) (RangeSet[T], error) {
	return BuildRanges(values).Complement(bound)
}

// Complement returns the ranges of all values inside bound that s does
// not cover. Values of s outside bound are ignored. The bound must be
// valid.
func (s RangeSet[T]) Complement(bound Range[T]) (RangeSet[T], error) {
	if !bound.IsValid() {
		return nil, fmt.Errorf("invalid bound %s, from must be <= to", bound)
	}
	var b SetBuilder[T]
	b.AddRange(bound)
	b.RemoveSet(s)
	return b.Set()
}

// Contains reports whether s covers v.
func (s RangeSet[T]) Contains(v T) bool {
	i := sort.Search(len(s), func(i int) bool { return v <= s[i].to })
	return i < len(s) && s[i].from <= v
}

// Count returns the number of values s covers. A set covering the full
// domain of a 64 bit type wraps to 0.
func (s RangeSet[T]) Count() uint64 {
	var n uint64
	for _, r := range s {
		n += r.Size()
	}
	return n
}

// Values returns every value s covers in ascending order.
func (s RangeSet[T]) Values() []T {
	if len(s) == 0 {
		return nil
	}
	return s.AppendValues(make([]T, 0, s.Count()))
}

// AppendValues appends every value s covers to dst and returns the
// extended slice.
func (s RangeSet[T]) AppendValues(dst []T) []T {
	for _, r := range s {
		for v := r.from; ; v++ {
			dst = append(dst, v)
			if v == r.to {
				break
			}
		}
	}
	return dst
}

// Clip returns s truncated to the values covered by bound: ranges
// outside bound are dropped, ranges straddling its bounds are
// truncated. Clipping to an invalid bound returns nil.
func (s RangeSet[T]) Clip(bound Range[T]) RangeSet[T] {
	var out RangeSet[T]
	for _, r := range s {
		if c, ok := r.Clip(bound); ok {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether s and o contain the same ranges.
func (s RangeSet[T]) Equal(o RangeSet[T]) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns s as a comma separated list of ranges.
func (s RangeSet[T]) String() string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r.String())
	}
	return sb.String()
}

// ParseSet parses a comma separated list of ranges and single values,
// e.g. "0-3,7,10-12", into a normalized RangeSet. Empty elements are
// skipped.
func ParseSet[T constraints.Integer](s string) (RangeSet[T], error) {
	var b SetBuilder[T]
	for _, elem := range strings.Split(s, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		if r, err := ParseRange[T](elem); err == nil {
			b.AddRange(r)
			continue
		}
		v, err := parseValue[T](elem)
		if err != nil {
			return nil, fmt.Errorf("invalid element %q in set %q", elem, s)
		}
		b.Add(v)
	}
	return b.Set()
}
