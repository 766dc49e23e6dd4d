package zones

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"
)

// MaxBitmaskIndex is the first zone index a Bitmask cannot represent.
const MaxBitmaskIndex = 128

// ErrIndexOutOfRange is returned when a zone index does not fit in a Bitmask.
var ErrIndexOutOfRange = errors.New("zone index out of bitmask range")

// IndexSet is an ascending set of unique, non-negative zone indices.
// An empty set means the window is not assigned to the layout.
type IndexSet []int

// NewIndexSet sorts and deduplicates indices. Negative indices are dropped.
func NewIndexSet(indices ...int) IndexSet {
	out := make(IndexSet, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 {
			out = append(out, idx)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s IndexSet) Empty() bool { return len(s) == 0 }

// Contains reports whether idx is in the set.
func (s IndexSet) Contains(idx int) bool {
	_, found := slices.BinarySearch(s, idx)
	return found
}

// Equal reports whether both sets hold the same indices.
func (s IndexSet) Equal(o IndexSet) bool {
	return slices.Equal(s, o)
}

// Min returns the smallest index, or -1 for an empty set.
func (s IndexSet) Min() int {
	if len(s) == 0 {
		return -1
	}
	return s[0]
}

// Max returns the largest index, or -1 for an empty set.
func (s IndexSet) Max() int {
	if len(s) == 0 {
		return -1
	}
	return s[len(s)-1]
}

// Union merges two sets.
func (s IndexSet) Union(o IndexSet) IndexSet {
	merged := make([]int, 0, len(s)+len(o))
	merged = append(merged, s...)
	merged = append(merged, o...)
	return NewIndexSet(merged...)
}

// Clone returns an independent copy.
func (s IndexSet) Clone() IndexSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

func (s IndexSet) String() string {
	parts := make([]string, len(s))
	for i, idx := range s {
		parts[i] = strconv.Itoa(idx)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Bitmask is the compact two-word encoding of an IndexSet. Part1 holds
// indices 0-63 and Part2 holds 64-127.
type Bitmask struct {
	Part1 uint64 `json:"part1"`
	Part2 uint64 `json:"part2"`
}

// BitmaskFromIndexSet encodes s. Indices at or above MaxBitmaskIndex are
// rejected rather than truncated.
func BitmaskFromIndexSet(s IndexSet) (Bitmask, error) {
	var mask Bitmask
	for _, idx := range s {
		switch {
		case idx < 0 || idx >= MaxBitmaskIndex:
			return Bitmask{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
		case idx < 64:
			mask.Part1 |= 1 << uint(idx)
		default:
			mask.Part2 |= 1 << uint(idx-64)
		}
	}
	return mask, nil
}

// IndexSet decodes the mask back into an ascending IndexSet.
func (m Bitmask) IndexSet() IndexSet {
	out := make(IndexSet, 0, bits.OnesCount64(m.Part1)+bits.OnesCount64(m.Part2))
	for i := 0; i < 64; i++ {
		if m.Part1&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	for i := 0; i < 64; i++ {
		if m.Part2&(1<<uint(i)) != 0 {
			out = append(out, i+64)
		}
	}
	return out
}

func (m Bitmask) IsZero() bool { return m.Part1 == 0 && m.Part2 == 0 }
