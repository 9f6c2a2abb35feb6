package lexer

import (
	"github.com/opal-lang/pysyntax/core/invariant"
	"github.com/opal-lang/pysyntax/core/text"
)

// Reader is a byte cursor over source text with one-token lookahead and a
// start mark for the token being read. It never copies the source.
type Reader struct {
	src   []byte
	pos   int
	start int
}

// NewReader returns a reader positioned at the start of src.
func NewReader(src []byte) *Reader {
	return &Reader{src: src}
}

// Pos returns the current offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the length of the source.
func (r *Reader) Len() int { return len(r.src) }

// AtEnd reports whether all input has been consumed.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.src) }

// Peek returns the byte k positions ahead of the cursor, or 0 past the end.
func (r *Reader) Peek(k int) byte {
	if i := r.pos + k; i < len(r.src) {
		return r.src[i]
	}
	return 0
}

// Current is Peek(0).
func (r *Reader) Current() byte { return r.Peek(0) }

// HasPrefix reports whether the unread input starts with s.
func (r *Reader) HasPrefix(s string) bool {
	if len(r.src)-r.pos < len(s) {
		return false
	}
	return string(r.src[r.pos:r.pos+len(s)]) == s
}

// Advance moves the cursor forward n bytes, clamped to the end.
func (r *Reader) Advance(n int) {
	invariant.Precondition(n >= 0, "advance by negative count %d", n)
	r.pos = min(r.pos+n, len(r.src))
}

// Eat consumes ch if it is the current byte.
func (r *Reader) Eat(ch byte) bool {
	if r.pos < len(r.src) && r.src[r.pos] == ch {
		r.pos++
		return true
	}
	return false
}

// EatWhile consumes bytes while the lookup table holds and returns how many
// it took. Non-ASCII bytes always stop the scan.
func (r *Reader) EatWhile(pred *[128]bool) int {
	begin := r.pos
	for r.pos < len(r.src) {
		ch := r.src[r.pos]
		if ch >= 128 || !pred[ch] {
			break
		}
		r.pos++
	}
	return r.pos - begin
}

// EatNewline consumes "\n", "\r\n" or "\r" and reports whether it did.
func (r *Reader) EatNewline() bool {
	switch r.Current() {
	case '\n':
		r.pos++
		return true
	case '\r':
		r.pos++
		r.Eat('\n')
		return true
	}
	return false
}

// Mark records the start of the next token.
func (r *Reader) Mark() { r.start = r.pos }

// Start returns the marked offset.
func (r *Reader) Start() int { return r.start }

// Range returns the span from the mark to the cursor.
func (r *Reader) Range() text.Range {
	return text.NewRange(r.start, r.pos)
}

// Slice returns the bytes from the mark to the cursor.
func (r *Reader) Slice() []byte {
	return r.src[r.start:r.pos]
}

// Source returns the underlying text.
func (r *Reader) Source() []byte { return r.src }
