package text

import (
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line/column pair. Column counts bytes unless the
// position came from UTF16Position.
type Position struct {
	Line   int
	Column int
}

// LineIndex maps byte offsets to line/column positions. Lines end at "\n",
// "\r\n" or a lone "\r", matching the tokenizer's notion of a line terminator.
type LineIndex struct {
	src    []byte
	starts []int
}

// NewLineIndex scans src once and records the start offset of every line.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (idx *LineIndex) LineCount() int {
	return len(idx.starts)
}

// LineStart returns the offset at which line begins.
func (idx *LineIndex) LineStart(line int) int {
	line = min(max(line, 0), len(idx.starts)-1)
	return idx.starts[line]
}

func (idx *LineIndex) line(offset int) int {
	offset = min(max(offset, 0), len(idx.src))
	return sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
}

// Position returns the line and byte column of offset.
func (idx *LineIndex) Position(offset int) Position {
	offset = min(max(offset, 0), len(idx.src))
	line := idx.line(offset)
	return Position{Line: line, Column: offset - idx.starts[line]}
}

// UTF16Position returns the line and UTF-16 code unit column of offset, the
// unit language server clients count in.
func (idx *LineIndex) UTF16Position(offset int) Position {
	offset = min(max(offset, 0), len(idx.src))
	line := idx.line(offset)
	col := 0
	for i := idx.starts[line]; i < offset; {
		r, size := utf8.DecodeRune(idx.src[i:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		i += size
	}
	return Position{Line: line, Column: col}
}

// lineEnd returns the offset where line's text ends, before its terminator.
func (idx *LineIndex) lineEnd(line int) int {
	line = min(max(line, 0), len(idx.starts)-1)
	if line+1 == len(idx.starts) {
		return len(idx.src)
	}
	end := idx.starts[line+1]
	if end > 0 && idx.src[end-1] == '\n' {
		end--
	}
	if end > idx.starts[line] && idx.src[end-1] == '\r' {
		end--
	}
	return end
}

// Offset converts a line and byte column back to an offset. A column past
// the end of the line clamps to the end of the line's text, before its
// terminator.
func (idx *LineIndex) Offset(pos Position) int {
	start := idx.LineStart(pos.Line)
	return min(start+max(pos.Column, 0), idx.lineEnd(pos.Line))
}

// UTF16Offset is the inverse of UTF16Position. A column past the end of the
// line clamps like Offset; a column inside a surrogate pair rounds up.
func (idx *LineIndex) UTF16Offset(pos Position) int {
	i := idx.LineStart(pos.Line)
	end := idx.lineEnd(pos.Line)
	for col := 0; col < pos.Column && i < end; {
		r, size := utf8.DecodeRune(idx.src[i:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		i += size
	}
	return i
}
