package rangeset

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Range is an inclusive range of integer values, from a lower bound
// from up to and including an upper bound to.
type Range[T constraints.Integer] struct {
	from T
	to   T
}

// RangeFrom returns the range covering from up to and including to.
// The result is invalid when to is smaller than from.
func RangeFrom[T constraints.Integer](from, to T) Range[T] {
	return Range[T]{from: from, to: to}
}

// RangeOf returns the range covering v and nothing else.
func RangeOf[T constraints.Integer](v T) Range[T] {
	return Range[T]{from: v, to: v}
}

// ParseRange parses s as an inclusive range of the form "from-to".
// The bounds are split on the first hyphen after a possible leading
// sign, so negative bounds such as "-4--2" parse. Both bounds must be
// representable by T.
func ParseRange[T constraints.Integer](s string) (Range[T], error) {
	var r Range[T]
	if len(s) == 0 {
		return r, fmt.Errorf("empty range")
	}
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		return r, fmt.Errorf("no hyphen in range %q", s)
	}
	h++
	from, err := parseValue[T](s[:h])
	if err != nil {
		return r, fmt.Errorf("invalid from value in range %q", s)
	}
	to, err := parseValue[T](s[h+1:])
	if err != nil {
		return r, fmt.Errorf("invalid to value in range %q", s)
	}
	return Range[T]{from: from, to: to}, nil
}

func parseValue[T constraints.Integer](s string) (T, error) {
	if isSigned[T]() {
		v, err := strconv.ParseInt(s, 10, bitSize[T]())
		return T(v), err
	}
	v, err := strconv.ParseUint(s, 10, bitSize[T]())
	return T(v), err
}

// From returns the lower bound of r.
func (r Range[T]) From() T { return r.from }

// To returns the upper bound of r.
func (r Range[T]) To() T { return r.to }

// IsZero reports whether r is the zero value.
func (r Range[T]) IsZero() bool { return r == Range[T]{} }

// IsValid reports whether r covers at least one value.
func (r Range[T]) IsValid() bool { return r.from <= r.to }

// Size returns the number of values r covers, 0 for an invalid range.
// A range spanning the full domain of a 64 bit type wraps to 0.
func (r Range[T]) Size() uint64 {
	if !r.IsValid() {
		return 0
	}
	return uint64(r.to) - uint64(r.from) + 1
}

// Contains reports whether r covers v.
func (r Range[T]) Contains(v T) bool {
	return r.from <= v && v <= r.to
}

// ContainsRange reports whether r covers every value of o.
func (r Range[T]) ContainsRange(o Range[T]) bool {
	return r.IsValid() && o.IsValid() && r.from <= o.from && o.to <= r.to
}

// Overlaps reports whether r and o share at least one value.
func (r Range[T]) Overlaps(o Range[T]) bool {
	return r.IsValid() && o.IsValid() && r.from <= o.to && o.from <= r.to
}

// Clip returns r truncated to the values covered by bound. The second
// return value is false when r and bound share no values.
func (r Range[T]) Clip(bound Range[T]) (Range[T], bool) {
	if !r.Overlaps(bound) {
		return Range[T]{}, false
	}
	if r.from < bound.from {
		r.from = bound.from
	}
	if r.to > bound.to {
		r.to = bound.to
	}
	return r, true
}

// String returns r in the form "from-to".
func (r Range[T]) String() string {
	return fmt.Sprintf("%d-%d", r.from, r.to)
}

// less sorts by lower bound, with the larger range first on equal
// lower bounds.
func (r Range[T]) less(o Range[T]) bool {
	if r.from != o.from {
		return r.from < o.from
	}
	return o.to < r.to
}

// entirelyBefore reports whether r lies entirely before o in value
// space.
func (r Range[T]) entirelyBefore(o Range[T]) bool {
	return r.to < o.from
}

// coveredBy reports whether o covers all of r.
func (r Range[T]) coveredBy(o Range[T]) bool {
	return o.from <= r.from && r.to <= o.to
}

// inMiddleOf reports whether r lies inside o without touching either
// of its bounds.
func (r Range[T]) inMiddleOf(o Range[T]) bool {
	return o.from < r.from && r.to < o.to
}

// overlapsStartOf reports whether r covers the start of o but not all
// of it.
func (r Range[T]) overlapsStartOf(o Range[T]) bool {
	return r.from <= o.from && r.to < o.to
}

// overlapsEndOf reports whether r covers the end of o but not all of
// it.
func (r Range[T]) overlapsEndOf(o Range[T]) bool {
	return o.from < r.from && o.to <= r.to
}

func bitSize[T constraints.Integer]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

func isSigned[T constraints.Integer]() bool {
	var zero T
	return ^zero < zero
}

// maxValue returns the largest value representable by T.
func maxValue[T constraints.Integer]() T {
	var zero T
	ones := ^zero
	if ones > zero {
		return ones
	}
	return ones ^ (ones << (bitSize[T]() - 1))
}

// minValue returns the smallest value representable by T.
func minValue[T constraints.Integer]() T {
	var zero T
	ones := ^zero
	if ones > zero {
		return zero
	}
	return ones << (bitSize[T]() - 1)
}
