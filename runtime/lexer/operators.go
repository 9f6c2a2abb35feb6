package lexer

// operator describes a punctuation token and its compound forms. For a first
// byte, the longest spelling present in the input wins.
type operator struct {
	single TokenKind // ch
	eq     TokenKind // ch=
	double TokenKind // chch
	dblEq  TokenKind // chch=
}

const none = EOF

var operators = [128]*operator{
	'+': {single: Plus, eq: PlusEqual, double: none, dblEq: none},
	'%': {single: Percent, eq: PercentEqual, double: none, dblEq: none},
	'@': {single: AtSign, eq: AtEqual, double: none, dblEq: none},
	'&': {single: Amper, eq: AmperEqual, double: none, dblEq: none},
	'|': {single: VBar, eq: VBarEqual, double: none, dblEq: none},
	'^': {single: Circumflex, eq: CircumflexEqual, double: none, dblEq: none},
	'=': {single: Equal, eq: EqEqual, double: none, dblEq: none},
	':': {single: Colon, eq: ColonEqual, double: none, dblEq: none},
	'*': {single: Star, eq: StarEqual, double: DoubleStar, dblEq: DoubleStarEqual},
	'/': {single: Slash, eq: SlashEqual, double: DoubleSlash, dblEq: DoubleSlashEqual},
	'<': {single: Less, eq: LessEqual, double: LeftShift, dblEq: LeftShiftEqual},
	'>': {single: Greater, eq: GreaterEqual, double: RightShift, dblEq: RightShiftEqual},
	'~': {single: Tilde, eq: none, double: none, dblEq: none},
	',': {single: Comma, eq: none, double: none, dblEq: none},
	';': {single: Semicolon, eq: none, double: none, dblEq: none},
}

// lexOperator reads punctuation by longest match. Bytes that start no
// operator become one-byte Unknown tokens.
func (l *Lexer) lexOperator() Token {
	r := l.r
	ch := r.Current()

	switch ch {
	case '(':
		r.Advance(1)
		l.openBracket()
		return l.emit(LParen)
	case '[':
		r.Advance(1)
		l.openBracket()
		return l.emit(LSquare)
	case '{':
		r.Advance(1)
		l.openBracket()
		return l.emit(LBrace)
	case ')':
		r.Advance(1)
		l.closeBracket()
		return l.emit(RParen)
	case ']':
		r.Advance(1)
		l.closeBracket()
		return l.emit(RSquare)
	case '}':
		r.Advance(1)
		l.closeBracket()
		return l.emit(RBrace)
	case '.':
		if r.HasPrefix("...") {
			r.Advance(3)
			return l.emit(Ellipsis)
		}
		r.Advance(1)
		return l.emit(Dot)
	case '-':
		switch r.Peek(1) {
		case '>':
			r.Advance(2)
			return l.emit(Arrow)
		case '=':
			r.Advance(2)
			return l.emit(MinusEqual)
		}
		r.Advance(1)
		return l.emit(Minus)
	case '!':
		if r.Peek(1) == '=' {
			r.Advance(2)
			return l.emit(NotEqual)
		}
	}

	if op := operators[ch]; op != nil {
		if op.double != none && r.Peek(1) == ch {
			if op.dblEq != none && r.Peek(2) == '=' {
				r.Advance(3)
				return l.emit(op.dblEq)
			}
			r.Advance(2)
			return l.emit(op.double)
		}
		if op.eq != none && r.Peek(1) == '=' {
			r.Advance(2)
			return l.emit(op.eq)
		}
		r.Advance(1)
		return l.emit(op.single)
	}

	r.Advance(1)
	l.errorf(r.Range(), "invalid character %s", describeRune(rune(ch)))
	return l.emit(Unknown)
}
