package parser

import (
	"fmt"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// statement parses one statement. It returns false when it could not finish
// the statement; the caller then closes open nodes and skips ahead.
func (p *parser) statement() bool {
	doc := p.docstring
	p.docstring = false
	p.suspect = -1
	p.trace("statement")

	switch p.current().Kind {
	case lexer.Newline:
		// Blank lines do not use up the docstring slot.
		p.bump()
		p.docstring = doc
		return true
	case lexer.Indent:
		return p.unexpectedIndent()
	case lexer.Dedent:
		m := p.start(Error)
		p.errorAt(p.current().Range, "unexpected dedent")
		p.bump()
		p.complete(m, Error)
		return true
	case lexer.KwIf:
		return p.ifStmt()
	case lexer.KwWhile:
		return p.whileStmt()
	case lexer.KwFor:
		return p.forStmt(p.start(ForStmt))
	case lexer.KwTry:
		return p.tryStmt()
	case lexer.KwWith:
		return p.withStmt(p.start(WithStmt))
	case lexer.KwDef:
		return p.funcDef(p.start(FunctionDef))
	case lexer.KwClass:
		return p.classDef(p.start(ClassDef))
	case lexer.KwAsync:
		return p.asyncStmt()
	case lexer.AtSign, lexer.DecoratorAt:
		return p.decorated()
	case lexer.KwElif, lexer.KwElse, lexer.KwExcept, lexer.KwFinally:
		return p.strayClause()
	case lexer.Name:
		if p.atMatchStatement() {
			return p.matchStmt()
		}
	}
	return p.simpleStatements(doc)
}

// simpleStatements parses ';'-separated small statements and the newline
// that ends them. Separators and the newline belong to the enclosing node.
func (p *parser) simpleStatements(doc bool) bool {
	for {
		if !p.smallStatement(doc) {
			return false
		}
		doc = false
		if !p.eat(lexer.Semicolon) || p.atAny(lexer.Newline, lexer.EOF, lexer.Dedent) {
			break
		}
	}
	return p.statementEnd()
}

// statementEnd consumes the newline after a simple statement. End of input
// and dedents also end a statement but are left for the caller.
func (p *parser) statementEnd() bool {
	switch p.current().Kind {
	case lexer.Newline:
		p.bump()
		return true
	case lexer.EOF, lexer.Dedent:
		return true
	}

	d := diagnostic.Errorf(p.current().Range, "expected newline, found %s", p.current().Kind.Describe())
	if p.suspect >= 0 {
		if kw := suggestKeyword(p.tokenText(p.suspect)); kw != "" {
			d.Message = "invalid syntax"
			d.Range = p.tokens[p.suspect].Range
			d.Suggestion = fmt.Sprintf("did you mean '%s'?", kw)
		}
	}
	p.report(d)
	return false
}

func (p *parser) smallStatement(doc bool) bool {
	switch p.current().Kind {
	case lexer.KwPass:
		p.single(PassStmt)
		return true
	case lexer.KwBreak:
		p.single(BreakStmt)
		return true
	case lexer.KwContinue:
		p.single(ContinueStmt)
		return true
	case lexer.KwReturn:
		return p.returnStmt()
	case lexer.KwRaise:
		return p.raiseStmt()
	case lexer.KwGlobal:
		return p.nameListStmt(GlobalStmt)
	case lexer.KwNonlocal:
		return p.nameListStmt(NonlocalStmt)
	case lexer.KwDel:
		return p.delStmt()
	case lexer.KwAssert:
		return p.assertStmt()
	case lexer.KwImport:
		return p.importStmt()
	case lexer.KwFrom:
		return p.importFromStmt()
	case lexer.Name:
		if p.atTypeAlias() {
			return p.typeAliasStmt()
		}
	}
	return p.exprStatement(doc)
}

// exprStatement parses expression statements and the assignment forms that
// start with an expression.
func (p *parser) exprStatement(doc bool) bool {
	m := p.start(ExprStmt)
	var first CompletedMarker
	var ok bool
	if p.at(lexer.KwYield) {
		first, ok = p.yieldExpr()
	} else {
		first, ok = p.starExpressions()
	}
	if !ok {
		return false
	}

	kind := ExprStmt
	switch {
	case p.at(lexer.Equal):
		kind = AssignStmt
		p.setKind(m, kind)
		p.checkTarget(first)
		for p.eat(lexer.Equal) {
			value, ok := p.assignValue()
			if !ok {
				return false
			}
			if p.at(lexer.Equal) {
				p.checkTarget(value)
			}
		}

	case p.current().Kind.IsAugmentedAssign():
		kind = AugAssignStmt
		p.setKind(m, kind)
		if !isSingleTarget(first.kind) {
			p.errorAt(p.nodeRange(first), "illegal expression for augmented assignment")
		}
		p.bump()
		if _, ok := p.assignValue(); !ok {
			return false
		}

	case p.at(lexer.Colon):
		kind = AnnAssignStmt
		p.setKind(m, kind)
		if !isSingleTarget(first.kind) && first.kind != ParenExpr {
			p.errorAt(p.nodeRange(first), "only single target (not %s) can be annotated", first.kind.describe())
		}
		p.bump()
		if _, ok := p.expr(); !ok {
			return false
		}
		if p.eat(lexer.Equal) {
			if _, ok := p.assignValue(); !ok {
				return false
			}
		}

	default:
		if doc && first.kind == StringLiteral {
			kind = Docstring
		}
		if first.kind == NameExpr && first.firstTok == first.lastTok {
			p.suspect = first.firstTok
		}
	}
	p.complete(m, kind)
	return true
}

func isSingleTarget(kind NodeKind) bool {
	return kind == NameExpr || kind == AttributeExpr || kind == SubscriptExpr
}

func (p *parser) assignValue() (CompletedMarker, bool) {
	if p.at(lexer.KwYield) {
		return p.yieldExpr()
	}
	return p.starExpressions()
}

func (p *parser) returnStmt() bool {
	m := p.start(ReturnStmt)
	p.bump()
	if p.atExpressionStart() && !p.at(lexer.KwYield) {
		if _, ok := p.starExpressions(); !ok {
			return false
		}
	}
	p.complete(m, ReturnStmt)
	return true
}

func (p *parser) raiseStmt() bool {
	m := p.start(RaiseStmt)
	p.bump()
	if p.atExpressionStart() {
		if _, ok := p.expr(); !ok {
			return false
		}
		if p.eat(lexer.KwFrom) {
			if _, ok := p.expr(); !ok {
				return false
			}
		}
	}
	p.complete(m, RaiseStmt)
	return true
}

// nameListStmt parses global and nonlocal.
func (p *parser) nameListStmt(kind NodeKind) bool {
	m := p.start(kind)
	kw := p.current().Kind
	p.bump()
	if !p.expect(lexer.Name, "after '"+kw.String()+"'") {
		return false
	}
	for p.eat(lexer.Comma) {
		if !p.expect(lexer.Name, "after ','") {
			return false
		}
	}
	p.complete(m, kind)
	return true
}

func (p *parser) delStmt() bool {
	m := p.start(DelStmt)
	p.bump()
	if _, ok := p.targetList(); !ok {
		return false
	}
	p.complete(m, DelStmt)
	return true
}

func (p *parser) assertStmt() bool {
	m := p.start(AssertStmt)
	p.bump()
	if _, ok := p.expr(); !ok {
		return false
	}
	if p.eat(lexer.Comma) {
		if _, ok := p.expr(); !ok {
			return false
		}
	}
	p.complete(m, AssertStmt)
	return true
}

func (p *parser) importStmt() bool {
	m := p.start(ImportStmt)
	p.bump()
	for {
		if !p.importAlias(true) {
			return false
		}
		if !p.eat(lexer.Comma) {
			break
		}
	}
	p.complete(m, ImportStmt)
	return true
}

func (p *parser) importFromStmt() bool {
	m := p.start(ImportFromStmt)
	p.bump()

	dots := false
	for p.atAny(lexer.Dot, lexer.Ellipsis) {
		p.bump()
		dots = true
	}
	if p.at(lexer.Name) {
		if !p.dottedName() {
			return false
		}
	} else if !dots {
		p.errorHere("expected module name, found %s", p.current().Kind.Describe())
	}

	if !p.expect(lexer.KwImport, "in 'from' import") {
		return false
	}
	switch {
	case p.eat(lexer.Star):
	case p.at(lexer.LParen):
		p.bump()
		for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
			if !p.importAlias(false) {
				return false
			}
			if !p.eat(lexer.Comma) {
				break
			}
		}
		p.expect(lexer.RParen, "to close import list")
	default:
		for {
			if !p.importAlias(false) {
				return false
			}
			if !p.eat(lexer.Comma) {
				break
			}
		}
	}
	p.complete(m, ImportFromStmt)
	return true
}

// importAlias parses "name [as alias]"; the name is a dotted path for plain
// imports.
func (p *parser) importAlias(dotted bool) bool {
	m := p.start(ImportAlias)
	if dotted {
		if !p.dottedName() {
			p.undo(m)
			return false
		}
	} else if !p.expect(lexer.Name, "in import list") {
		p.undo(m)
		return false
	}
	if p.eat(lexer.KwAs) {
		p.expect(lexer.Name, "after 'as'")
	}
	p.complete(m, ImportAlias)
	return true
}

func (p *parser) dottedName() bool {
	m := p.start(DottedName)
	if !p.expect(lexer.Name, "in module path") {
		p.undo(m)
		return false
	}
	for p.eat(lexer.Dot) {
		p.expect(lexer.Name, "after '.'")
	}
	p.complete(m, DottedName)
	return true
}

// atTypeAlias recognizes the soft keyword in "type X = ..." and
// "type X[T] = ...".
func (p *parser) atTypeAlias() bool {
	return p.atSoft("type") && p.nth(1) == lexer.Name &&
		(p.nth(2) == lexer.Equal || p.nth(2) == lexer.LSquare)
}

func (p *parser) typeAliasStmt() bool {
	m := p.start(TypeAliasStmt)
	p.requireFeature(version.TypeAliasStatement, p.current().Range)
	p.bump()
	p.bump()
	if p.at(lexer.LSquare) && !p.typeParams(false) {
		return false
	}
	if !p.expect(lexer.Equal, "in type alias") {
		return false
	}
	if _, ok := p.expr(); !ok {
		return false
	}
	p.complete(m, TypeAliasStmt)
	return true
}
