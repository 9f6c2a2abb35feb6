// Package lexer turns source text into a lossless token stream.
//
// Every byte of the input belongs to exactly one token. Whitespace, comments,
// the shebang line and backslash continuations are trivia tokens; newlines
// are significant. Indentation changes at the start of logical lines are
// reported as zero-length Indent and Dedent tokens, and every Indent is
// matched by a Dedent before EOF.
//
// The lexer never fails: malformed input produces Unknown tokens or
// best-effort literal tokens plus diagnostics.
package lexer

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/invariant"
	"github.com/opal-lang/pysyntax/core/text"
)

const tabSize = 8

// Option configures a Lexer.
type Option func(*config)

type config struct {
	implicitBracket bool
	logger          *slog.Logger
}

// WithImplicitBracket lexes as if the whole input were wrapped in
// parentheses: no indentation processing, and newlines are only layout.
// Replacement fields of interpolated strings are lexed this way.
func WithImplicitBracket() Option {
	return func(c *config) {
		c.implicitBracket = true
	}
}

// WithLogger traces every produced token at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Lexer produces one token per NextToken call.
type Lexer struct {
	r      *Reader
	logger *slog.Logger

	indents        []int // indentation stack, bottom is always 0
	pendingDedents int   // dedents owed before the next real token
	pendingIndent  bool  // an indent owed before the next real token
	atLineStart    bool
	depth          int // bracket nesting; indentation is ignored inside brackets
	baseDepth      int
	emittedEOF     bool

	diagnostics []diagnostic.Diagnostic
}

// New returns a lexer over src.
func New(src []byte, opts ...Option) *Lexer {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Lexer{
		r:           NewReader(src),
		logger:      cfg.logger,
		indents:     make([]int, 1, 8),
		atLineStart: true,
	}
	if cfg.implicitBracket {
		l.depth = 1
		l.baseDepth = 1
		l.atLineStart = false
	}
	return l
}

// Tokenize lexes all of src. The last token is always EOF.
func Tokenize(src []byte, opts ...Option) ([]Token, []diagnostic.Diagnostic) {
	l := New(src, opts...)
	// Roughly one token per four bytes of typical source.
	tokens := make([]Token, 0, len(src)/4+8)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return tokens, l.diagnostics
}

// Diagnostics returns the problems found so far.
func (l *Lexer) Diagnostics() []diagnostic.Diagnostic {
	return l.diagnostics
}

// NextToken returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	before := l.r.Pos()
	tok := l.next()

	invariant.Postcondition(tok.Range.Start == before,
		"token %s does not start at cursor %d", tok, before)
	invariant.Postcondition(tok.Range.Len > 0 || tok.Kind == Indent || tok.Kind == Dedent || tok.Kind == EOF,
		"empty %s token at %d", tok.Kind, before)

	if l.logger != nil {
		l.logger.Debug("token", "kind", tok.Kind.String(), "range", tok.Range.String())
	}
	return tok
}

func (l *Lexer) next() Token {
	if tok, ok := l.pendingLayout(); ok {
		return tok
	}

	if l.atLineStart && l.depth == 0 && !l.r.AtEnd() {
		l.atLineStart = false
		if tok, ok := l.lineStart(); ok {
			return tok
		}
		if tok, ok := l.pendingLayout(); ok {
			return tok
		}
	}

	if l.r.AtEnd() {
		return l.eof()
	}
	return l.lexToken()
}

func (l *Lexer) pendingLayout() (Token, bool) {
	pos := l.r.Pos()
	if l.pendingDedents > 0 {
		l.pendingDedents--
		return Token{Kind: Dedent, Range: text.Empty(pos)}, true
	}
	if l.pendingIndent {
		l.pendingIndent = false
		return Token{Kind: Indent, Range: text.Empty(pos)}, true
	}
	return Token{}, false
}

// eof closes every open indentation level, then yields EOF forever.
func (l *Lexer) eof() Token {
	pos := l.r.Pos()
	if !l.emittedEOF && len(l.indents) > 1 {
		l.pendingDedents = len(l.indents) - 1
		l.indents = l.indents[:1]
		l.pendingDedents--
		return Token{Kind: Dedent, Range: text.Empty(pos)}
	}
	l.emittedEOF = true
	return Token{Kind: EOF, Range: text.Empty(pos)}
}

// lineStart measures the indentation of a new physical line at bracket depth
// zero and queues Indent/Dedent tokens. It returns the leading whitespace as
// a trivia token when there is any.
func (l *Lexer) lineStart() (Token, bool) {
	r := l.r
	r.Mark()
	if r.Pos() == 0 && r.HasPrefix("\ufeff") {
		r.Advance(3)
	}

	width := 0
loop:
	for {
		switch r.Current() {
		case ' ':
			width++
		case '\t':
			width = (width/tabSize + 1) * tabSize
		case '\f':
			width = 0
		default:
			break loop
		}
		r.Advance(1)
	}
	leading := r.Range()

	switch ch := r.Current(); {
	case r.AtEnd(), isNewlineByte(ch), ch == '#':
		// Blank and comment-only lines never change indentation.
	case ch == '\\' && isNewlineByte(r.Peek(1)):
	default:
		l.indentTo(width, leading)
	}

	if leading.Len > 0 {
		return Token{Kind: Whitespace, Range: leading}, true
	}
	return Token{}, false
}

func (l *Lexer) indentTo(width int, at text.Range) {
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.pendingIndent = true
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.pendingDedents++
		}
		if l.indents[len(l.indents)-1] != width {
			l.errorf(at, "unindent does not match any outer indentation level")
		}
	}
}

// lexToken dispatches on the first byte of the next token.
func (l *Lexer) lexToken() Token {
	r := l.r
	r.Mark()
	ch := r.Current()

	switch {
	case ch < utf8.RuneSelf && isSpace[ch]:
		r.EatWhile(&isSpace)
		return l.emit(Whitespace)

	case ch == '#':
		if r.Pos() == 0 && r.Peek(1) == '!' {
			l.skipToLineEnd()
			return l.emit(Shebang)
		}
		l.skipToLineEnd()
		return l.emit(Comment)

	case isNewlineByte(ch):
		r.EatNewline()
		if l.depth == 0 {
			l.atLineStart = true
		}
		return l.emit(Newline)

	case ch == '\\':
		return l.lexBackslash()

	case ch < utf8.RuneSelf && isDigit[ch], ch == '.' && r.Peek(1) < utf8.RuneSelf && isDigit[r.Peek(1)]:
		return l.lexNumber()

	case ch < utf8.RuneSelf && isQuote[ch]:
		return l.lexString(String, false)
	}

	if ok, _ := identStartAt(r.Source(), r.Pos()); ok {
		return l.lexIdentifier()
	}
	if ch >= utf8.RuneSelf {
		return l.lexInvalidRune()
	}
	return l.lexOperator()
}

func (l *Lexer) emit(kind TokenKind) Token {
	return Token{Kind: kind, Range: l.r.Range()}
}

func (l *Lexer) skipToLineEnd() {
	r := l.r
	for !r.AtEnd() && !isNewlineByte(r.Current()) {
		r.Advance(1)
	}
}

func (l *Lexer) lexBackslash() Token {
	r := l.r
	r.Advance(1)
	if r.EatNewline() {
		return l.emit(LineContinuation)
	}
	if r.AtEnd() {
		l.errorf(r.Range(), "unexpected end of file after line continuation character")
	} else {
		l.errorf(r.Range(), "unexpected character after line continuation character")
	}
	return l.emit(Unknown)
}

// lexIdentifier reads a name, keyword, or the prefix of a string literal.
func (l *Lexer) lexIdentifier() Token {
	r := l.r
	src := r.Source()
	for !r.AtEnd() {
		ok, size := identPartAt(src, r.Pos())
		if !ok {
			break
		}
		r.Advance(size)
	}

	word := r.Slice()
	if ch := r.Current(); ch < utf8.RuneSelf && isQuote[ch] {
		if kind, ok := isStringPrefix(word); ok {
			return l.lexString(kind, prefixIsRaw(word))
		}
	}
	return l.emit(LookupKeyword(word))
}

func (l *Lexer) lexInvalidRune() Token {
	r := l.r
	ru, size := utf8.DecodeRune(r.Source()[r.Pos():])
	r.Advance(size)
	if ru == utf8.RuneError && size == 1 {
		l.errorf(r.Range(), "invalid UTF-8 byte 0x%02x", r.Slice()[0])
	} else {
		l.errorf(r.Range(), "invalid character %s", describeRune(ru))
	}
	return l.emit(Unknown)
}

func describeRune(ru rune) string {
	return fmt.Sprintf("'%c' (U+%04X)", ru, ru)
}

func (l *Lexer) errorf(r text.Range, format string, args ...any) {
	l.diagnostics = append(l.diagnostics, diagnostic.Errorf(r, format, args...))
}

func (l *Lexer) warnf(r text.Range, format string, args ...any) {
	l.diagnostics = append(l.diagnostics, diagnostic.Warnf(r, format, args...))
}

func (l *Lexer) openBracket() {
	l.depth++
}

func (l *Lexer) closeBracket() {
	if l.depth > l.baseDepth {
		l.depth--
	}
}
