package rangeset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	cases := map[string]struct {
		s           string
		expected    string
		expectedErr bool
	}{

		"Normal": {
			s:        "10-20",
			expected: "10-20",
		},
		"Single": {
			s:        "7-7",
			expected: "7-7",
		},
		"NegativeFrom": {
			s:        "-4-4",
			expected: "-4-4",
		},
		"NegativeBoth": {
			s:        "-4--2",
			expected: "-4--2",
		},
		"Empty": {
			s:           "",
			expectedErr: true,
		},
		"NoHyphen": {
			s:           "10",
			expectedErr: true,
		},
		"BareNegative": {
			s:           "-5",
			expectedErr: true,
		},
		"Junk": {
			s:           "a-b",
			expectedErr: true,
		},
		"TrailingGarbage": {
			s:           "10-20x",
			expectedErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := ParseRange[int64](tc.s)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expected, r.String()); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestParseRangeWidth(t *testing.T) {
	// Bounds must fit the value type.
	_, err := ParseRange[uint8]("250-300")
	assert.Error(t, err)
	_, err = ParseRange[uint8]("250-255")
	assert.NoError(t, err)
	// Unsigned types reject negative bounds.
	_, err = ParseRange[uint16]("-1-10")
	assert.Error(t, err)
	// Reversed bounds parse but yield an invalid range.
	r, err := ParseRange[int64]("20-10")
	assert.NoError(t, err)
	assert.False(t, r.IsValid())
}

func TestRangeValid(t *testing.T) {
	assert.True(t, RangeFrom[int64](-5, 5).IsValid())
	assert.True(t, RangeOf[int64](5).IsValid())
	assert.False(t, RangeFrom[int64](5, -5).IsValid())
	assert.True(t, Range[int64]{}.IsZero())
	assert.False(t, RangeOf[int64](1).IsZero())
}

func TestRangeSize(t *testing.T) {
	cases := map[string]struct {
		r    Range[int8]
		size uint64
	}{

		"Single":     {r: RangeOf[int8](5), size: 1},
		"Normal":     {r: RangeFrom[int8](-4, 4), size: 9},
		"FullDomain": {r: RangeFrom[int8](-128, 127), size: 256},
		"Invalid":    {r: RangeFrom[int8](4, -4), size: 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.r.Size() != tc.size {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.size, tc.r.Size())
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := RangeFrom[int64](-4, 4)
	assert.True(t, r.Contains(-4))
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(-5))
	assert.False(t, r.Contains(5))

	assert.True(t, r.ContainsRange(RangeFrom[int64](-4, 4)))
	assert.True(t, r.ContainsRange(RangeOf[int64](0)))
	assert.False(t, r.ContainsRange(RangeFrom[int64](-5, 4)))
	assert.False(t, r.ContainsRange(RangeFrom[int64](0, 5)))
}

func TestRangeOverlaps(t *testing.T) {
	r := RangeFrom[int64](0, 10)
	assert.True(t, r.Overlaps(RangeFrom[int64](10, 20)))
	assert.True(t, r.Overlaps(RangeFrom[int64](-5, 0)))
	assert.True(t, r.Overlaps(RangeFrom[int64](3, 7)))
	assert.False(t, r.Overlaps(RangeFrom[int64](11, 20)))
	assert.False(t, r.Overlaps(RangeFrom[int64](-5, -1)))
	assert.False(t, r.Overlaps(RangeFrom[int64](20, 11)))
}

func TestRangeClip(t *testing.T) {
	cases := map[string]struct {
		r        Range[int64]
		bound    Range[int64]
		expected string
		ok       bool
	}{

		"Inside": {
			r:        RangeFrom[int64](2, 4),
			bound:    RangeFrom[int64](0, 10),
			expected: "2-4",
			ok:       true,
		},
		"StraddleStart": {
			r:        RangeFrom[int64](-5, 4),
			bound:    RangeFrom[int64](0, 10),
			expected: "0-4",
			ok:       true,
		},
		"StraddleEnd": {
			r:        RangeFrom[int64](8, 15),
			bound:    RangeFrom[int64](0, 10),
			expected: "8-10",
			ok:       true,
		},
		"Covering": {
			r:        RangeFrom[int64](-5, 15),
			bound:    RangeFrom[int64](0, 10),
			expected: "0-10",
			ok:       true,
		},
		"Outside": {
			r:     RangeFrom[int64](11, 15),
			bound: RangeFrom[int64](0, 10),
			ok:    false,
		},
		"InvalidBound": {
			r:     RangeFrom[int64](2, 4),
			bound: RangeFrom[int64](10, 0),
			ok:    false,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, ok := tc.r.Clip(tc.bound)
			if ok != tc.ok {
				t.Errorf("%s: -want %t, +got: %t\n", name, tc.ok, ok)
				return
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tc.expected, c.String()); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestLimits(t *testing.T) {
	assert.Equal(t, int8(127), maxValue[int8]())
	assert.Equal(t, int8(-128), minValue[int8]())
	assert.Equal(t, uint8(255), maxValue[uint8]())
	assert.Equal(t, uint8(0), minValue[uint8]())
	assert.Equal(t, int64(9223372036854775807), maxValue[int64]())
	assert.Equal(t, int64(-9223372036854775808), minValue[int64]())
	assert.Equal(t, uint64(18446744073709551615), maxValue[uint64]())
}
