// Package text provides byte ranges over source text and the line index used
// to turn them into human (and LSP) positions.
package text

import "fmt"

// Range is a half-open byte range [Start, Start+Len) into the source text.
type Range struct {
	Start int
	Len   int
}

// NewRange returns the range covering [start, end).
func NewRange(start, end int) Range {
	if end < start {
		end = start
	}
	return Range{Start: start, Len: end - start}
}

// Empty returns a zero-length range at offset.
func Empty(offset int) Range {
	return Range{Start: offset}
}

// End returns the exclusive end offset.
func (r Range) End() int {
	return r.Start + r.Len
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Len == 0
}

// Contains reports whether offset lies inside the range. The end offset is
// excluded, except that an empty range contains its own start.
func (r Range) Contains(offset int) bool {
	if r.Len == 0 {
		return offset == r.Start
	}
	return offset >= r.Start && offset < r.End()
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End() <= r.End()
}

// Cover returns the smallest range containing both r and other.
func (r Range) Cover(other Range) Range {
	return NewRange(min(r.Start, other.Start), max(r.End(), other.End()))
}

// Shift moves the range by delta bytes.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, Len: r.Len}
}

// Slice returns the bytes of src covered by the range, clamped to src.
func (r Range) Slice(src []byte) []byte {
	start := min(max(r.Start, 0), len(src))
	end := min(max(r.End(), start), len(src))
	return src[start:end]
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End())
}
