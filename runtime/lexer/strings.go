package lexer

import (
	"unicode/utf8"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/text"
)

// stringState describes the literal being read: which quote closes it,
// whether it is triple-quoted, and which escapes it understands.
type stringState struct {
	kind   TokenKind
	quote  byte
	triple bool
	raw    bool
}

// lexString reads a string literal whose prefix (if any) has already been
// consumed; the cursor is on the opening quote. An unterminated literal is
// still emitted, covering what was read.
func (l *Lexer) lexString(kind TokenKind, raw bool) Token {
	r := l.r
	st := stringState{kind: kind, quote: r.Current(), raw: raw}
	if r.Peek(1) == st.quote && r.Peek(2) == st.quote {
		st.triple = true
		r.Advance(3)
	} else {
		r.Advance(1)
	}

	for {
		if r.AtEnd() {
			l.unterminated(st)
			return l.emit(kind)
		}

		ch := r.Current()
		switch {
		case ch == '\\':
			l.stringEscape(st)

		case isNewlineByte(ch):
			if !st.triple {
				l.unterminated(st)
				return l.emit(kind)
			}
			r.EatNewline()

		case ch == st.quote:
			if !st.triple {
				r.Advance(1)
				return l.emit(kind)
			}
			if r.Peek(1) == st.quote && r.Peek(2) == st.quote {
				r.Advance(3)
				return l.emit(kind)
			}
			r.Advance(1)

		default:
			r.Advance(1)
		}
	}
}

func (l *Lexer) unterminated(st stringState) {
	if st.triple {
		l.errorf(l.r.Range(), "unterminated triple-quoted string literal")
	} else {
		l.errorf(l.r.Range(), "unterminated string literal")
	}
}

// stringEscape consumes one backslash sequence. Raw literals and
// interpolated strings only skip the escaped character; the latter are
// validated segment by segment by the interpolation sub-lexer.
func (l *Lexer) stringEscape(st stringState) {
	r := l.r
	if st.raw || st.kind == FString {
		r.Advance(1)
		if !r.EatNewline() && !r.AtEnd() {
			r.Advance(1)
		}
		return
	}

	pos := r.Pos()
	n, d, ok := ScanEscape(r.Source(), pos, st.kind == Bytes)
	if ok {
		l.diagnostics = append(l.diagnostics, d)
	}
	r.Advance(n)
}

// ScanEscape examines the backslash sequence starting at src[i] and returns
// its length. When the sequence is malformed or unknown it also returns a
// diagnostic: truncated \x, \u, \U and malformed \N{...} are errors, unknown
// escapes are warnings.
func ScanEscape(src []byte, i int, isBytes bool) (int, diagnostic.Diagnostic, bool) {
	if i+1 >= len(src) {
		return 1, diagnostic.Diagnostic{}, false
	}

	ch := src[i+1]
	switch ch {
	case '\n', '\\', '\'', '"', 'a', 'b', 'f', 'n', 'r', 't', 'v':
		return 2, diagnostic.Diagnostic{}, false
	case '\r':
		if i+2 < len(src) && src[i+2] == '\n' {
			return 3, diagnostic.Diagnostic{}, false
		}
		return 2, diagnostic.Diagnostic{}, false
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := 2
		for n < 4 && i+n < len(src) && src[i+n] < utf8.RuneSelf && isOctDigit[src[i+n]] {
			n++
		}
		return n, diagnostic.Diagnostic{}, false
	case 'x':
		return scanHexEscape(src, i, 2, "\\xXX")
	case 'u', 'U', 'N':
		if isBytes {
			return 2, diagnostic.Warnf(text.NewRange(i, i+2),
				"invalid escape sequence '\\%c'", ch), true
		}
		switch ch {
		case 'u':
			return scanHexEscape(src, i, 4, "\\uXXXX")
		case 'U':
			return scanHexEscape(src, i, 8, "\\UXXXXXXXX")
		}
		return scanNamedEscape(src, i)
	}

	if ch >= utf8.RuneSelf {
		_, size := utf8.DecodeRune(src[i+1:])
		return 1 + size, diagnostic.Warnf(text.NewRange(i, i+1+size),
			"invalid escape sequence '\\%s'", src[i+1:i+1+size]), true
	}
	return 2, diagnostic.Warnf(text.NewRange(i, i+2), "invalid escape sequence '\\%c'", ch), true
}

func scanHexEscape(src []byte, i, digits int, form string) (int, diagnostic.Diagnostic, bool) {
	n := 2
	for n < 2+digits && i+n < len(src) && src[i+n] < utf8.RuneSelf && isHexDigit[src[i+n]] {
		n++
	}
	if n < 2+digits {
		return n, diagnostic.Errorf(text.NewRange(i, i+n), "truncated %s escape", form), true
	}
	return n, diagnostic.Diagnostic{}, false
}

func scanNamedEscape(src []byte, i int) (int, diagnostic.Diagnostic, bool) {
	n := 2
	if i+n >= len(src) || src[i+n] != '{' {
		return n, diagnostic.Errorf(text.NewRange(i, i+n), "malformed \\N character escape"), true
	}
	n++
	nameStart := n
	for i+n < len(src) && src[i+n] != '}' && !isNewlineByte(src[i+n]) && !(src[i+n] < utf8.RuneSelf && isQuote[src[i+n]]) {
		n++
	}
	if i+n >= len(src) || src[i+n] != '}' || n == nameStart {
		return n, diagnostic.Errorf(text.NewRange(i, i+n), "malformed \\N character escape"), true
	}
	return n + 1, diagnostic.Diagnostic{}, false
}
