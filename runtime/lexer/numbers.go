package lexer

import (
	"unicode/utf8"
)

// lexNumber reads an integer, float or imaginary literal. Only the first
// problem in a literal is reported; the literal token always covers the
// whole malformed run so that "123abc" stays one token.
func (l *Lexer) lexNumber() Token {
	r := l.r
	kind := Int
	bad := false

	if r.Current() == '0' {
		var digits *[128]bool
		var name string
		switch r.Peek(1) | 0x20 {
		case 'x':
			digits, name = &isHexDigit, "hexadecimal"
		case 'o':
			digits, name = &isOctDigit, "octal"
		case 'b':
			digits, name = &isBinDigit, "binary"
		}
		if digits != nil {
			r.Advance(2)
			if l.eatDigits(digits, true) == 0 {
				l.errorf(r.Range(), "invalid %s literal", name)
				bad = true
			}
			if ch := r.Current(); !bad && ch < utf8.RuneSelf && isDigit[ch] {
				r.Advance(1)
				l.errorf(r.Range(), "invalid digit '%c' in %s literal", ch, name)
				r.EatWhile(&isDigit)
				bad = true
			}
			return l.finishNumber(kind, bad)
		}
	}

	leadingZero := r.Current() == '0'
	if r.Current() != '.' {
		bad = l.eatDecimal()
	}
	intPart := r.Slice()

	if r.Current() == '.' {
		kind = Float
		r.Advance(1)
		if ch := r.Current(); ch < utf8.RuneSelf && isDigit[ch] {
			bad = l.eatDecimal() || bad
		}
	}

	if r.Current()|0x20 == 'e' {
		sign := 0
		if c := r.Peek(1); c == '+' || c == '-' {
			sign = 1
		}
		c := r.Peek(1 + sign)
		switch {
		case c < utf8.RuneSelf && isDigit[c]:
			kind = Float
			r.Advance(1 + sign)
			bad = l.eatDecimal() || bad
		case sign == 1 || !l.identPartAfter(1):
			// "1e" or "1e+" with nothing after; "1else" is left to finishNumber.
			kind = Float
			r.Advance(1 + sign)
			if !bad {
				l.errorf(r.Range(), "invalid decimal literal: missing exponent digits")
			}
			bad = true
		}
	}

	if r.Current()|0x20 == 'j' {
		kind = Imaginary
		r.Advance(1)
	}

	if kind == Int && leadingZero && !bad && hasNonZero(intPart) {
		l.errorf(r.Range(), "leading zeros in decimal integer literals are not permitted")
		bad = true
	}
	return l.finishNumber(kind, bad)
}

// identPartAfter reports whether the byte n ahead of the cursor continues an
// identifier.
func (l *Lexer) identPartAfter(n int) bool {
	src := l.r.Source()
	pos := l.r.Pos() + n
	if pos >= len(src) {
		return false
	}
	ok, _ := identPartAt(src, pos)
	return ok
}

// finishNumber folds an identifier run glued to the literal into the token.
func (l *Lexer) finishNumber(kind TokenKind, bad bool) Token {
	r := l.r
	src := r.Source()
	if r.AtEnd() {
		return l.emit(kind)
	}
	if ok, _ := identStartAt(src, r.Pos()); !ok {
		return l.emit(kind)
	}

	ch, _ := utf8.DecodeRune(src[r.Pos():])
	for !r.AtEnd() {
		ok, size := identPartAt(src, r.Pos())
		if !ok {
			break
		}
		r.Advance(size)
	}
	if !bad {
		l.errorf(r.Range(), "invalid character '%c' after numeric literal", ch)
	}
	return l.emit(kind)
}

// eatDecimal consumes digits with single underscores between them and
// reports whether an underscore was misplaced.
func (l *Lexer) eatDecimal() bool {
	r := l.r
	bad := false
	for {
		ch := r.Current()
		switch {
		case ch < utf8.RuneSelf && isDigit[ch]:
			r.Advance(1)
		case ch == '_':
			next := r.Peek(1)
			if next >= utf8.RuneSelf || !isDigit[next] {
				r.Advance(1)
				if !bad {
					l.errorf(r.Range(), "invalid decimal literal")
				}
				bad = true
				continue
			}
			r.Advance(1)
		default:
			return bad
		}
	}
}

// eatDigits consumes digits of a prefixed literal, where an underscore may
// also directly follow the prefix.
func (l *Lexer) eatDigits(table *[128]bool, afterPrefix bool) int {
	r := l.r
	n := 0
	for {
		ch := r.Current()
		if ch < utf8.RuneSelf && table[ch] {
			r.Advance(1)
			n++
			afterPrefix = false
			continue
		}
		next := r.Peek(1)
		if ch == '_' && (n > 0 || afterPrefix) && next < utf8.RuneSelf && table[next] {
			r.Advance(1)
			continue
		}
		return n
	}
}

func hasNonZero(digits []byte) bool {
	for _, ch := range digits {
		if ch >= '1' && ch <= '9' {
			return true
		}
	}
	return false
}
