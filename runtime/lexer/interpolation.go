package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/text"
)

// SegmentKind classifies a piece of an interpolated string.
type SegmentKind uint8

const (
	SegmentText       SegmentKind = iota // literal text, or the source of a replacement expression
	SegmentExprStart                     // the opening '{' of a replacement field
	SegmentExprEnd                       // the closing '}' of a replacement field
	SegmentConversion                    // "!r", "!s" or "!a"; Text holds the letter
	SegmentFormatSpec                    // ":spec"; Text holds what follows the colon
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "Text"
	case SegmentExprStart:
		return "ExprStart"
	case SegmentExprEnd:
		return "ExprEnd"
	case SegmentConversion:
		return "Conversion"
	case SegmentFormatSpec:
		return "FormatSpec"
	default:
		return fmt.Sprintf("SegmentKind(%d)", k)
	}
}

// Segment is one piece of an interpolated string. Range is absolute in the
// enclosing source. For text outside replacement fields, Text has doubled
// braces collapsed; everywhere else it is the raw source.
type Segment struct {
	Kind  SegmentKind
	Range text.Range
	Text  string
}

func (s Segment) String() string {
	if s.Text == "" {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Text)
}

// SplitInterpolation splits the text of an FString token (prefix and quotes
// included) that starts at offset base in the source.
func SplitInterpolation(token []byte, base int) ([]Segment, []diagnostic.Diagnostic) {
	prefix := 0
	for prefix < len(token) && token[prefix] < utf8.RuneSelf && !isQuote[token[prefix]] {
		prefix++
	}
	if prefix == len(token) {
		return nil, nil
	}

	quote := token[prefix]
	open := 1
	if len(token) >= prefix+3 && token[prefix+1] == quote && token[prefix+2] == quote {
		open = 3
	}
	end := len(token)
	closing := strings.Repeat(string(quote), open)
	if len(token) >= prefix+2*open && strings.HasSuffix(string(token), closing) {
		end -= open
	}

	lx := &InterpolationLexer{
		src:    token[:end],
		pos:    prefix + open,
		base:   base,
		quote:  quote,
		triple: open == 3,
		raw:    prefixIsRaw(token[:prefix]),
	}
	return lx.Run()
}

// InterpolationLexer splits the body of an interpolated string into text
// runs and replacement fields. It runs over one token's text after the main
// tokenizer has produced it.
type InterpolationLexer struct {
	src    []byte // token text up to (not including) the closing quotes
	pos    int
	base   int // source offset of src[0]
	quote  byte
	triple bool
	raw    bool

	buf         []byte
	textStart   int
	segments    []Segment
	diagnostics []diagnostic.Diagnostic
	abandoned   bool
}

// NewInterpolationLexer returns a sub-lexer over body, the text between the
// quotes, which starts at offset base in the source.
func NewInterpolationLexer(body []byte, base int, quote byte, triple, raw bool) *InterpolationLexer {
	return &InterpolationLexer{src: body, base: base, quote: quote, triple: triple, raw: raw}
}

// Run produces the segments and any diagnostics.
func (lx *InterpolationLexer) Run() ([]Segment, []diagnostic.Diagnostic) {
	lx.textStart = lx.pos
	for lx.pos < len(lx.src) && !lx.abandoned {
		ch := lx.src[lx.pos]
		next := lx.peek(1)
		switch {
		case ch == '\\':
			lx.escape()

		case ch == '{' && next == '{', ch == '}' && next == '}':
			lx.buf = append(lx.buf, ch)
			lx.pos += 2

		case ch == '{':
			lx.flushText(lx.pos)
			lx.emit(SegmentExprStart, lx.pos, lx.pos+1, "")
			lx.pos++
			lx.field()
			lx.textStart = lx.pos

		case ch == '}':
			lx.errorf(lx.pos, lx.pos+1, "f-string: single '}' is not allowed")
			lx.buf = append(lx.buf, ch)
			lx.pos++

		default:
			lx.buf = append(lx.buf, ch)
			lx.pos++
		}
	}
	if !lx.abandoned {
		lx.flushText(lx.pos)
	}
	return lx.segments, lx.diagnostics
}

func (lx *InterpolationLexer) peek(k int) byte {
	if i := lx.pos + k; i < len(lx.src) {
		return lx.src[i]
	}
	return 0
}

// escape copies one backslash sequence into the current text run. A
// backslash before a brace never hides the brace.
func (lx *InterpolationLexer) escape() {
	next := lx.peek(1)
	if next == '{' || next == '}' {
		if !lx.raw {
			lx.warnf(lx.pos, lx.pos+2, "invalid escape sequence '\\%c'", next)
		}
		lx.buf = append(lx.buf, '\\')
		lx.pos++
		return
	}

	n := 2
	if lx.raw {
		n = min(2, len(lx.src)-lx.pos)
	} else {
		var d diagnostic.Diagnostic
		var ok bool
		n, d, ok = ScanEscape(lx.src, lx.pos, false)
		if ok {
			lx.diagnostics = append(lx.diagnostics, d.Shift(lx.base))
		}
	}
	lx.buf = append(lx.buf, lx.src[lx.pos:lx.pos+n]...)
	lx.pos += n
}

// field scans a replacement field after its '{' up to and including the
// matching '}'.
func (lx *InterpolationLexer) field() {
	open := lx.pos - 1
	start := lx.pos
	depth := 0

	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch {
		case ch < utf8.RuneSelf && isQuote[ch]:
			lx.skipNestedString()
			continue

		case ch == '(' || ch == '[' || ch == '{':
			depth++

		case ch == ')' || ch == ']':
			if depth > 0 {
				depth--
			}

		case ch == '}':
			if depth > 0 {
				depth--
				break
			}
			lx.expression(open, start, lx.pos)
			lx.emit(SegmentExprEnd, lx.pos, lx.pos+1, "")
			lx.pos++
			return

		case ch == '!' && depth == 0 && lx.peek(1) != '=':
			lx.expression(open, start, lx.pos)
			lx.conversion()
			return

		case ch == ':' && depth == 0:
			lx.expression(open, start, lx.pos)
			lx.formatSpec()
			return
		}
		lx.pos++
	}

	lx.expression(open, start, lx.pos)
	lx.errorf(open, lx.pos, "f-string: expecting '}'")
}

// expression emits the source of a replacement expression.
func (lx *InterpolationLexer) expression(open, start, end int) {
	if strings.TrimSpace(string(lx.src[start:end])) == "" {
		lx.errorf(open, end, "f-string: empty expression not allowed")
		return
	}
	lx.emit(SegmentText, start, end, string(lx.src[start:end]))
}

// conversion handles "!x" after an expression. Anything other than r, s or a
// abandons the rest of the token.
func (lx *InterpolationLexer) conversion() {
	bang := lx.pos
	letter := lx.peek(1)
	after := lx.peek(2)
	if (letter == 'r' || letter == 's' || letter == 'a') && (after == ':' || after == '}') {
		lx.emit(SegmentConversion, bang, bang+2, string(letter))
		lx.pos += 2
		if after == ':' {
			lx.formatSpec()
			return
		}
		lx.emit(SegmentExprEnd, lx.pos, lx.pos+1, "")
		lx.pos++
		return
	}

	lx.errorf(bang, min(bang+2, len(lx.src)),
		"f-string: invalid conversion character: expected 's', 'r', or 'a'")
	lx.abandoned = true
}

// formatSpec takes everything after ':' verbatim up to the '}' that closes
// the field, stepping over nested "{...}" fields inside the spec.
func (lx *InterpolationLexer) formatSpec() {
	colon := lx.pos
	lx.pos++
	depth := 0
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
				break
			}
			lx.emit(SegmentFormatSpec, colon, lx.pos, string(lx.src[colon+1:lx.pos]))
			lx.emit(SegmentExprEnd, lx.pos, lx.pos+1, "")
			lx.pos++
			return
		}
		lx.pos++
	}
	lx.emit(SegmentFormatSpec, colon, lx.pos, string(lx.src[colon+1:lx.pos]))
	lx.errorf(colon, lx.pos, "f-string: expecting '}'")
}

// skipNestedString steps over a quoted string inside a replacement field.
func (lx *InterpolationLexer) skipNestedString() {
	q := lx.src[lx.pos]
	n := 1
	if lx.peek(1) == q && lx.peek(2) == q {
		n = 3
	}
	lx.pos += n
	for lx.pos < len(lx.src) {
		switch {
		case lx.src[lx.pos] == '\\':
			lx.pos += 2
		case n == 1 && lx.src[lx.pos] == q:
			lx.pos++
			return
		case n == 3 && lx.src[lx.pos] == q && lx.peek(1) == q && lx.peek(2) == q:
			lx.pos += 3
			return
		default:
			lx.pos++
		}
	}
	lx.pos = len(lx.src)
}

func (lx *InterpolationLexer) flushText(end int) {
	if end > lx.textStart {
		lx.emit(SegmentText, lx.textStart, end, string(lx.buf))
	}
	lx.buf = lx.buf[:0]
}

func (lx *InterpolationLexer) emit(kind SegmentKind, start, end int, s string) {
	lx.segments = append(lx.segments, Segment{
		Kind:  kind,
		Range: text.NewRange(start, end).Shift(lx.base),
		Text:  s,
	})
}

func (lx *InterpolationLexer) errorf(start, end int, format string, args ...any) {
	lx.diagnostics = append(lx.diagnostics,
		diagnostic.Errorf(text.NewRange(start, end).Shift(lx.base), format, args...))
}

func (lx *InterpolationLexer) warnf(start, end int, format string, args ...any) {
	lx.diagnostics = append(lx.diagnostics,
		diagnostic.Warnf(text.NewRange(start, end).Shift(lx.base), format, args...))
}
