package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

func parse(input string, opts ...Option) *Result {
	src := []byte(input)
	tokens, _ := lexer.Tokenize(src)
	return Parse(src, tokens, opts...)
}

func parseExpr(input string) *Result {
	src := []byte(input)
	tokens, _ := lexer.Tokenize(src, lexer.WithImplicitBracket())
	return ParseExpression(src, tokens)
}

type outlineNode struct {
	kind     NodeKind
	children []*outlineNode
}

func (n *outlineNode) String() string {
	if len(n.children) == 0 {
		return n.kind.String()
	}
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = c.String()
	}
	return n.kind.String() + "(" + strings.Join(parts, " ") + ")"
}

// outline replays events into nested node kinds, tokens omitted:
// "Module(AssignStmt(NameExpr NumberLiteral))".
func outline(res *Result) string {
	events := append([]Event(nil), res.Events...)
	root := &outlineNode{}
	stack := []*outlineNode{root}

	for i := range events {
		e := events[i]
		switch e.Kind {
		case EventOpen:
			kinds := []NodeKind{e.Node}
			for j, fp := i, e.ForwardParent; fp != 0; {
				j += int(fp)
				kinds = append(kinds, events[j].Node)
				fp = events[j].ForwardParent
				events[j].Kind = EventTombstone
			}
			for k := len(kinds) - 1; k >= 0; k-- {
				n := &outlineNode{kind: kinds[k]}
				top := stack[len(stack)-1]
				top.children = append(top.children, n)
				stack = append(stack, n)
			}
		case EventClose:
			stack = stack[:len(stack)-1]
		}
	}

	parts := make([]string, len(root.children))
	for i, c := range root.children {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func messages(ds []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Message)
	}
	return out
}

func TestValidSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"assignment", "x = 1\n", "Module(AssignStmt(NameExpr NumberLiteral))"},
		{"chained assignment", "a = b = 1\n", "Module(AssignStmt(NameExpr NameExpr NumberLiteral))"},
		{"augmented assignment", "x += 1\n", "Module(AugAssignStmt(NameExpr NumberLiteral))"},
		{"annotated assignment", "x: int = 1\n", "Module(AnnAssignStmt(NameExpr NameExpr NumberLiteral))"},
		{"tuple assignment", "a, b = b, a\n", "Module(AssignStmt(TupleExpr(NameExpr NameExpr) TupleExpr(NameExpr NameExpr)))"},
		{"empty module", "", "Module"},
		{"blank lines and comments", "\n# comment\n\n", "Module"},

		{"sum binds looser than product", "a + b * c\n",
			"Module(ExprStmt(BinaryExpr(NameExpr BinaryExpr(NameExpr NameExpr))))"},
		{"sum is left associative", "a - b - c\n",
			"Module(ExprStmt(BinaryExpr(BinaryExpr(NameExpr NameExpr) NameExpr)))"},
		{"power is right associative", "2 ** 3 ** 2\n",
			"Module(ExprStmt(BinaryExpr(NumberLiteral BinaryExpr(NumberLiteral NumberLiteral))))"},
		{"unary minus binds looser than power", "-x ** 2\n",
			"Module(ExprStmt(UnaryExpr(BinaryExpr(NameExpr NumberLiteral))))"},
		{"comparison chain stays flat", "a < b <= c\n",
			"Module(ExprStmt(CompareExpr(NameExpr NameExpr NameExpr)))"},
		{"not in and is not", "a not in b is not c\n",
			"Module(ExprStmt(CompareExpr(NameExpr NameExpr NameExpr)))"},
		{"not binds tighter than and", "not a and b\n",
			"Module(ExprStmt(BoolOpExpr(UnaryExpr(NameExpr) NameExpr)))"},
		{"and binds tighter than or", "a or b and c\n",
			"Module(ExprStmt(BoolOpExpr(NameExpr BoolOpExpr(NameExpr NameExpr))))"},
		{"bitwise precedence", "a | b ^ c & d\n",
			"Module(ExprStmt(BinaryExpr(NameExpr BinaryExpr(NameExpr BinaryExpr(NameExpr NameExpr)))))"},
		{"conditional expression", "x if c else y\n",
			"Module(ExprStmt(TernaryExpr(NameExpr NameExpr NameExpr)))"},
		{"lambda", "f = lambda x, y=1: x\n",
			"Module(AssignStmt(NameExpr LambdaExpr(ParamList(Param Param(NumberLiteral)) NameExpr)))"},
		{"await", "await x\n", "Module(ExprStmt(AwaitExpr(NameExpr)))"},
		{"yield", "yield x\n", "Module(ExprStmt(YieldExpr(NameExpr)))"},

		{"parenthesized", "(1)\n", "Module(ExprStmt(ParenExpr(NumberLiteral)))"},
		{"empty tuple", "()\n", "Module(ExprStmt(TupleExpr))"},
		{"one-tuple", "(1,)\n", "Module(ExprStmt(TupleExpr(NumberLiteral)))"},
		{"tuple", "(1, 2, 3)\n", "Module(ExprStmt(TupleExpr(NumberLiteral NumberLiteral NumberLiteral)))"},
		{"generator", "(x for x in y)\n",
			"Module(ExprStmt(GeneratorExpr(NameExpr CompFor(NameExpr NameExpr))))"},
		{"list comprehension", "[x for x in y if x]\n",
			"Module(ExprStmt(ListComp(NameExpr CompFor(NameExpr NameExpr) CompIf(NameExpr))))"},
		{"list", "[1, *a]\n", "Module(ExprStmt(ListExpr(NumberLiteral StarredExpr(NameExpr))))"},
		{"dict", "{1: 2, **d}\n",
			"Module(ExprStmt(DictExpr(DictEntry(NumberLiteral NumberLiteral) DoubleStarredExpr(NameExpr))))"},
		{"set", "{1, 2}\n", "Module(ExprStmt(SetExpr(NumberLiteral NumberLiteral)))"},
		{"dict comprehension", "{k: v for k, v in items}\n",
			"Module(ExprStmt(DictComp(DictEntry(NameExpr NameExpr) CompFor(TupleExpr(NameExpr NameExpr) NameExpr))))"},
		{"call arguments", "f(a, b=1, *c, **d)\n",
			"Module(ExprStmt(CallExpr(NameExpr ArgList(NameExpr KeywordArg(NumberLiteral) StarredExpr(NameExpr) DoubleStarredExpr(NameExpr)))))"},
		{"attribute and subscript", "a.b[c]\n",
			"Module(ExprStmt(SubscriptExpr(AttributeExpr(NameExpr) NameExpr)))"},
		{"slice", "x[1:2]\n", "Module(ExprStmt(SubscriptExpr(NameExpr SliceExpr(NumberLiteral NumberLiteral))))"},
		{"implicit string concatenation", "'a' 'b'\n", "Module(Docstring(StringLiteral))"},
		{"f-string", "x = f'{a}' 'b'\n", "Module(AssignStmt(NameExpr FStringLiteral))"},
		{"newlines inside brackets", "x = [\n    1,\n    2,\n]\n",
			"Module(AssignStmt(NameExpr ListExpr(NumberLiteral NumberLiteral)))"},

		{"pass break continue", "pass; break; continue\n", "Module(PassStmt BreakStmt ContinueStmt)"},
		{"return", "return a, b\n", "Module(ReturnStmt(TupleExpr(NameExpr NameExpr)))"},
		{"raise from", "raise E from e\n", "Module(RaiseStmt(NameExpr NameExpr))"},
		{"global", "global a, b\n", "Module(GlobalStmt)"},
		{"del", "del a, b[0]\n", "Module(DelStmt(TupleExpr(NameExpr SubscriptExpr(NameExpr NumberLiteral))))"},
		{"assert", "assert x, 'msg'\n", "Module(AssertStmt(NameExpr StringLiteral))"},
		{"import", "import a.b as c, d\n", "Module(ImportStmt(ImportAlias(DottedName) ImportAlias(DottedName)))"},
		{"from import", "from ..a import (b as c, d,)\n",
			"Module(ImportFromStmt(DottedName ImportAlias ImportAlias))"},
		{"from import star", "from . import *\n", "Module(ImportFromStmt)"},
		{"soft keyword as name", "match = 1\ntype = 2\n",
			"Module(AssignStmt(NameExpr NumberLiteral) AssignStmt(NameExpr NumberLiteral))"},
		{"module docstring", "\"\"\"doc\"\"\"\nx = 1\n",
			"Module(Docstring(StringLiteral) AssignStmt(NameExpr NumberLiteral))"},

		{"if elif else", "if x:\n    pass\nelif y:\n    pass\nelse:\n    pass\n",
			"Module(IfStmt(NameExpr Suite(PassStmt) ElifClause(NameExpr Suite(PassStmt)) ElseClause(Suite(PassStmt))))"},
		{"while else", "while x:\n    break\nelse:\n    pass\n",
			"Module(WhileStmt(NameExpr Suite(BreakStmt) ElseClause(Suite(PassStmt))))"},
		{"for", "for i, j in pairs:\n    pass\n",
			"Module(ForStmt(TupleExpr(NameExpr NameExpr) NameExpr Suite(PassStmt)))"},
		{"async for", "async for x in y:\n    pass\n",
			"Module(ForStmt(NameExpr NameExpr Suite(PassStmt)))"},
		{"try", "try:\n    pass\nexcept E as e:\n    pass\nelse:\n    pass\nfinally:\n    pass\n",
			"Module(TryStmt(Suite(PassStmt) ExceptClause(NameExpr Suite(PassStmt)) ElseClause(Suite(PassStmt)) FinallyClause(Suite(PassStmt))))"},
		{"with", "with open(p) as f, lock:\n    pass\n",
			"Module(WithStmt(WithItem(CallExpr(NameExpr ArgList(NameExpr)) NameExpr) WithItem(NameExpr) Suite(PassStmt)))"},
		{"with parenthesized expression", "with (a):\n    pass\n",
			"Module(WithStmt(WithItem(ParenExpr(NameExpr)) Suite(PassStmt)))"},
		{"function", "def f(a, /, b: int = 1, *args, **kw) -> int:\n    pass\n",
			"Module(FunctionDef(ParamList(Param Param Param(NameExpr NumberLiteral) Param Param) ReturnAnnotation(NameExpr) Suite(PassStmt)))"},
		{"function docstring", "def f():\n    \"doc\"\n    return 1\n",
			"Module(FunctionDef(ParamList Suite(Docstring(StringLiteral) ReturnStmt(NumberLiteral))))"},
		{"inline suite", "def f(): pass\n", "Module(FunctionDef(ParamList Suite(PassStmt)))"},
		{"class", "class C(Base, metaclass=M):\n    x = 1\n",
			"Module(ClassDef(ArgList(NameExpr KeywordArg(NameExpr)) Suite(AssignStmt(NameExpr NumberLiteral))))"},
		{"decorated function", "@dec\ndef f(): pass\n",
			"Module(FunctionDef(DecoratorList(Decorator(NameExpr)) ParamList Suite(PassStmt)))"},
		{"decorated class", "@a.b(1)\n@c\nclass C: pass\n",
			"Module(ClassDef(DecoratorList(Decorator(CallExpr(AttributeExpr(NameExpr) ArgList(NumberLiteral))) Decorator(NameExpr)) Suite(PassStmt)))"},
		{"generic class", "class Stack[T]:\n    pass\n",
			"Module(ClassDef(TypeParamList(TypeParam) Suite(PassStmt)))"},
		{"type alias", "type Pair[T] = tuple[T, T]\n",
			"Module(TypeAliasStmt(TypeParamList(TypeParam) SubscriptExpr(NameExpr TupleExpr(NameExpr NameExpr))))"},
		{"match", "match x:\n    case 1:\n        pass\n",
			"Module(MatchStmt(NameExpr Suite(CaseClause(NumberLiteral Suite(PassStmt)))))"},
		{"match with guard and capture", "match p:\n    case [a, b] as c if a:\n        pass\n",
			"Module(MatchStmt(NameExpr Suite(CaseClause(ListExpr(NameExpr NameExpr) Guard(NameExpr) Suite(PassStmt)))))"},
		{"walrus", "if (n := len(a)) > 10:\n    pass\n",
			"Module(IfStmt(CompareExpr(ParenExpr(NamedExpr(NameExpr CallExpr(NameExpr ArgList(NameExpr)))) NumberLiteral) Suite(PassStmt)))"},
		{"nested blocks", "def f():\n    if x:\n        return 1\n    return 2\n",
			"Module(FunctionDef(ParamList Suite(IfStmt(NameExpr Suite(ReturnStmt(NumberLiteral))) ReturnStmt(NumberLiteral))))"},
		{"block without trailing newline", "def f():\n    pass",
			"Module(FunctionDef(ParamList Suite(PassStmt)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(tt.input)
			if len(res.Diagnostics) != 0 {
				t.Errorf("unexpected diagnostics: %v", messages(res.Diagnostics))
			}
			if diff := cmp.Diff(tt.want, outline(res)); diff != "" {
				t.Errorf("tree mismatch for %q (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		tree  string
	}{
		{
			name:  "missing colon after if",
			input: "if x\n    pass\n",
			want:  []string{"expected ':' after 'if' condition"},
			tree:  "Module(IfStmt(NameExpr Suite(PassStmt)))",
		},
		{
			name:  "missing assignment value",
			input: "x = \ny = 2\n",
			want:  []string{"expected expression, found newline"},
			tree:  "Module(AssignStmt(NameExpr) AssignStmt(NameExpr NumberLiteral))",
		},
		{
			name:  "assign to literal",
			input: "1 = x\n",
			want:  []string{"cannot assign to literal"},
			tree:  "Module(AssignStmt(NumberLiteral NameExpr))",
		},
		{
			name:  "assign to call",
			input: "f() = 1\n",
			want:  []string{"cannot assign to function call"},
			tree:  "Module(AssignStmt(CallExpr(NameExpr ArgList) NumberLiteral))",
		},
		{
			name:  "augmented assignment to tuple",
			input: "a, b += 1\n",
			want:  []string{"illegal expression for augmented assignment"},
			tree:  "Module(AugAssignStmt(TupleExpr(NameExpr NameExpr) NumberLiteral))",
		},
		{
			name:  "annotated tuple",
			input: "a, b: int\n",
			want:  []string{"only single target (not tuple) can be annotated"},
			tree:  "Module(AnnAssignStmt(TupleExpr(NameExpr NameExpr) NameExpr))",
		},
		{
			name:  "walrus on attribute",
			input: "(a.b := 1)\n",
			want:  []string{"cannot use assignment expressions with attribute"},
			tree:  "Module(ExprStmt(ParenExpr(NamedExpr(AttributeExpr(NameExpr) NumberLiteral))))",
		},
		{
			name:  "stray else",
			input: "else:\n    pass\n",
			want:  []string{"'else' without a matching 'if', 'for', 'while' or 'try'"},
			tree:  "Module(Error(Suite(PassStmt)))",
		},
		{
			name:  "stray elif",
			input: "x = 1\nelif y:\n    pass\n",
			want:  []string{"'elif' without a matching 'if'"},
			tree:  "Module(AssignStmt(NameExpr NumberLiteral) Error(NameExpr Suite(PassStmt)))",
		},
		{
			name:  "unexpected indent",
			input: "x = 1\n    y = 2\n",
			want:  []string{"unexpected indent"},
			tree:  "Module(AssignStmt(NameExpr NumberLiteral) Error(AssignStmt(NameExpr NumberLiteral)))",
		},
		{
			name:  "missing indented block",
			input: "while x:\npass\n",
			want:  []string{"expected an indented block after 'while' statement"},
			tree:  "Module(WhileStmt(NameExpr Suite) PassStmt)",
		},
		{
			name:  "try without handlers",
			input: "try:\n    pass\nx = 1\n",
			want:  []string{"expected 'except' or 'finally' block"},
			tree:  "Module(TryStmt(Suite(PassStmt)) AssignStmt(NameExpr NumberLiteral))",
		},
		{
			name:  "mixed except and except star",
			input: "try:\n    pass\nexcept* A:\n    pass\nexcept B:\n    pass\n",
			want:  []string{"cannot have both 'except' and 'except*' on the same 'try'"},
			tree:  "Module(TryStmt(Suite(PassStmt) ExceptClause(NameExpr Suite(PassStmt)) ExceptClause(NameExpr Suite(PassStmt))))",
		},
		{
			name:  "unclosed parenthesis",
			input: "(1, 2\n",
			want:  []string{"expected ')' to close parenthesized expression"},
			tree:  "Module(ExprStmt(TupleExpr(NumberLiteral NumberLiteral)))",
		},
		{
			name:  "two expressions on one line",
			input: "print \"hello\"\n",
			want:  []string{"expected newline, found literal"},
			tree:  "Module(ExprStmt(NameExpr) Error)",
		},
		{
			name:  "decorator without definition",
			input: "@dec\nx = 1\n",
			want:  []string{"expected function or class definition after decorator, found identifier"},
			tree:  "Module(Error(DecoratorList(Decorator(NameExpr))) AssignStmt(NameExpr NumberLiteral))",
		},
		{
			name:  "invalid character as operand",
			input: "x = $\n",
			want:  nil,
			tree:  "Module(AssignStmt(NameExpr Error))",
		},
		{
			name:  "invalid character as statement",
			input: "$\ny = 1\n",
			want:  nil,
			tree:  "Module(ExprStmt(Error) AssignStmt(NameExpr NumberLiteral))",
		},
		{
			name:  "recovery continues at next statement",
			input: "x = )\ny = 1\n",
			want:  []string{"expected expression, found ')'"},
			tree:  "Module(AssignStmt(NameExpr) Error AssignStmt(NameExpr NumberLiteral))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(tt.input)
			if diff := cmp.Diff(tt.want, messages(res.Diagnostics)); diff != "" {
				t.Errorf("diagnostics mismatch for %q (-want +got):\n%s", tt.input, diff)
			}
			if diff := cmp.Diff(tt.tree, outline(res)); diff != "" {
				t.Errorf("tree mismatch for %q (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestMisspelledKeywordSuggestion(t *testing.T) {
	src := "def f(x):\n    retrun x\n"
	res := parse(src)

	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", messages(res.Diagnostics))
	}
	d := res.Diagnostics[0]
	if d.Message != "invalid syntax" {
		t.Errorf("message = %q, want %q", d.Message, "invalid syntax")
	}
	if d.Suggestion != "did you mean 'return'?" {
		t.Errorf("suggestion = %q, want %q", d.Suggestion, "did you mean 'return'?")
	}
	if got := string(d.Range.Slice([]byte(src))); got != "retrun" {
		t.Errorf("range covers %q, want %q", got, "retrun")
	}
}

func TestSuggestKeyword(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"retrun", "return"},
		{"retrn", "return"},
		{"imprt", "import"},
		{"whiel", "while"},
		{"contnue", "continue"},
		{"xyzzy", ""},
		{"if", ""},
	}
	for _, tt := range tests {
		if got := suggestKeyword(tt.word); got != tt.want {
			t.Errorf("suggestKeyword(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestVersionWarnings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target string
		want   []string
	}{
		{"walrus before 3.8", "(y := 1)\n", "3.7",
			[]string{"assignment expressions require Python 3.8 or newer (target is 3.7)"}},
		{"walrus at 3.8", "(y := 1)\n", "3.8", nil},
		{"positional-only before 3.8", "def f(a, /):\n    pass\n", "3.7",
			[]string{"positional-only parameters require Python 3.8 or newer (target is 3.7)"}},
		{"parenthesized with items before 3.9", "with (open(a) as f, open(b) as g):\n    pass\n", "3.8",
			[]string{"parenthesized context managers require Python 3.9 or newer (target is 3.8)"}},
		{"match before 3.10", "match x:\n    case 1:\n        pass\n", "3.9",
			[]string{"match statements require Python 3.10 or newer (target is 3.9)"}},
		{"except star before 3.11", "try:\n    pass\nexcept* E:\n    pass\n", "3.10",
			[]string{"'except*' clauses require Python 3.11 or newer (target is 3.10)"}},
		{"generic class before 3.12", "class Stack[T]:\n    pass\n", "3.11",
			[]string{"type parameter lists require Python 3.12 or newer (target is 3.11)"}},
		{"generic class at 3.12", "class Stack[T]:\n    pass\n", "3.12", nil},
		{"type alias before 3.12", "type Alias = int\n", "3.11",
			[]string{"type alias statements require Python 3.12 or newer (target is 3.11)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(tt.input, WithVersion(version.MustParse(tt.target)))
			if diff := cmp.Diff(tt.want, messages(res.Diagnostics)); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
			for _, d := range res.Diagnostics {
				if d.Kind != diagnostic.VersionWarning {
					t.Errorf("diagnostic %q has kind %s, want %s", d.Message, d.Kind, diagnostic.VersionWarning)
				}
			}
		})
	}
}

func TestAtSignReclassification(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  lexer.TokenKind
	}{
		{"decorator", "@dec\ndef f(): pass\n", lexer.DecoratorAt},
		{"matrix multiplication", "a @ b\n", lexer.MatMul},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(tt.input)
			for _, tok := range res.Tokens {
				if string(tok.Text([]byte(tt.input))) == "@" && tok.Kind != tt.want {
					t.Errorf("'@' classified as %s, want %s", tok.Kind, tt.want)
				}
			}
		})
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		tree  string
		want  []string
	}{
		{"name", "name", "Interpolation(NameExpr)", nil},
		{"self-documenting", "x=", "Interpolation(NameExpr)", nil},
		{"call across lines", "f(\n  a)", "Interpolation(CallExpr(NameExpr ArgList(NameExpr)))", nil},
		{"trailing garbage", "a b", "Interpolation(NameExpr Error)",
			[]string{"unexpected identifier in f-string expression"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseExpr(tt.input)
			if diff := cmp.Diff(tt.tree, outline(res)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, messages(res.Diagnostics)); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTelemetry(t *testing.T) {
	res := parse("x = 1\n")
	if res.Telemetry != nil {
		t.Fatal("telemetry collected without WithTelemetry")
	}

	res = parse("def f():\n    return (1 + 2)\n", WithTelemetry())
	if res.Telemetry == nil {
		t.Fatal("expected telemetry")
	}
	if res.Telemetry.EventCount != len(res.Events) {
		t.Errorf("EventCount = %d, want %d", res.Telemetry.EventCount, len(res.Events))
	}
	if res.Telemetry.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", res.Telemetry.ErrorCount)
	}
	if res.Telemetry.MaxDepth < 4 {
		t.Errorf("MaxDepth = %d, want at least 4", res.Telemetry.MaxDepth)
	}
}
