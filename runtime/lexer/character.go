package lexer

import (
	"unicode"
	"unicode/utf8"
)

// ASCII lookup tables. Bytes >= 0x80 are classified through the unicode
// package by the helpers below.
//
//	if ch < 128 && isIdentStart[ch] { ... }
var (
	isSpace      [128]bool // space, tab, form feed
	isIdentStart [128]bool // a-z, A-Z, _
	isIdentPart  [128]bool // identifier start or digit
	isDigit      [128]bool // 0-9
	isHexDigit   [128]bool // 0-9, a-f, A-F
	isOctDigit   [128]bool // 0-7
	isBinDigit   [128]bool // 0-1
	isQuote      [128]bool // ' and "
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)

		isSpace[i] = ch == ' ' || ch == '\t' || ch == '\f'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
		isHexDigit[i] = isDigit[i] || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
		isOctDigit[i] = '0' <= ch && ch <= '7'
		isBinDigit[i] = ch == '0' || ch == '1'
		isQuote[i] = ch == '\'' || ch == '"'
	}
}

// identStartAt reports whether an identifier starts at src[i] and returns
// the width of that first character.
func identStartAt(src []byte, i int) (bool, int) {
	ch := src[i]
	if ch < utf8.RuneSelf {
		return isIdentStart[ch], 1
	}
	r, size := utf8.DecodeRune(src[i:])
	if r == utf8.RuneError {
		return false, size
	}
	return unicode.IsLetter(r) || r == '_' || unicode.Is(unicode.Other_ID_Start, r), size
}

// identPartAt is identStartAt for continuation characters.
func identPartAt(src []byte, i int) (bool, int) {
	ch := src[i]
	if ch < utf8.RuneSelf {
		return isIdentPart[ch], 1
	}
	r, size := utf8.DecodeRune(src[i:])
	if r == utf8.RuneError {
		return false, size
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc, unicode.Other_ID_Start, unicode.Other_ID_Continue), size
}

func isNewlineByte(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

// isStringPrefix reports whether ident is a legal string prefix and which
// literal kind it selects.
func isStringPrefix(ident []byte) (TokenKind, bool) {
	switch len(ident) {
	case 1:
		switch ident[0] | 0x20 {
		case 'r', 'u':
			return String, true
		case 'b':
			return Bytes, true
		case 'f':
			return FString, true
		}
	case 2:
		a, b := ident[0]|0x20, ident[1]|0x20
		switch {
		case (a == 'r' && b == 'b') || (a == 'b' && b == 'r'):
			return Bytes, true
		case (a == 'r' && b == 'f') || (a == 'f' && b == 'r'):
			return FString, true
		}
	}
	return 0, false
}

// prefixIsRaw reports whether a string prefix contains r or R.
func prefixIsRaw(prefix []byte) bool {
	for _, ch := range prefix {
		if ch|0x20 == 'r' {
			return true
		}
	}
	return false
}
