package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// Fuzz targets for the event stream:
//
// 1. FuzzParserNoPanic - any input parses and ends at EOF
// 2. FuzzParserEventBalance - opens and closes pair up, every token appears once
// 3. FuzzParserDeterminism - the same input yields the same events

func addSeedCorpus(f *testing.F) {
	seeds := []string{
		"",
		"x = 1\n",
		"def f():\n    pass",
		"if x\n    pass",
		"class Stack[T]:\n    pass\n",
		"(1, 2, 3)",
		"(1)",
		"retrun x\n",
		"else:\n  pass\n",
		"x = 1\n    y = 2\n",
		"@dec\n@\ndef",
		"match x:\n    case [a, *b] if a:\n        pass\n    case _:\n        pass\n",
		"try:\n  pass\nexcept* E:\n  pass\nexcept F:\n  pass\n",
		"lambda: (yield)",
		"a[1:2, ::3, *b]",
		"f(x for x in y if z)(**k)",
		"with (a as b, c as d):\n  pass\n",
		"x = (\n  1,\n",
		")))]]]}}}",
		"def f(a, /, *, b=1, **c) -> int: return a",
		"type X[T: int = str, *Ts, **P] = list[T]",
		"async with a: await b",
		"from . import (a as b,",
		"if a:\n\tb\n        c\n  d\n",
		"x: int\ny := 1\nnot not not",
		`f"{x!r:>{w}}"`,
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func FuzzParserNoPanic(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, src []byte) {
		tokens, _ := lexer.Tokenize(src)
		res := Parse(src, tokens)
		if len(res.Events) == 0 {
			t.Fatal("no events for input")
		}

		exprTokens, _ := lexer.Tokenize(src, lexer.WithImplicitBracket())
		ParseExpression(src, exprTokens)
	})
}

func FuzzParserEventBalance(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, src []byte) {
		tokens, _ := lexer.Tokenize(src)
		res := Parse(src, tokens)

		opens, closes := 0, 0
		next := 0
		for i, e := range res.Events {
			switch e.Kind {
			case EventOpen:
				opens++
				if e.ForwardParent != 0 {
					j := i + int(e.ForwardParent)
					if j >= len(res.Events) || res.Events[j].Kind != EventOpen {
						t.Fatalf("event %d: forward parent %d is not an open event", i, j)
					}
				}
			case EventClose:
				closes++
				if closes > opens {
					t.Fatalf("event %d: close without open", i)
				}
			case EventToken, EventTrivia:
				if int(e.Token) != next {
					t.Fatalf("event %d: token %d out of order, want %d", i, e.Token, next)
				}
				next++
			}
		}

		if opens != closes {
			t.Fatalf("%d opens, %d closes", opens, closes)
		}
		if next != len(tokens)-1 {
			t.Fatalf("%d of %d tokens placed in the tree", next, len(tokens)-1)
		}
		for _, d := range res.Diagnostics {
			if d.Range.Start < 0 || d.Range.End() > len(src) {
				t.Fatalf("diagnostic %q out of bounds: %s", d.Message, d.Range)
			}
		}
	})
}

func FuzzParserDeterminism(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, src []byte) {
		tokens, _ := lexer.Tokenize(src)
		first := Parse(src, tokens)
		second := Parse(src, tokens)

		if diff := cmp.Diff(first.Events, second.Events); diff != "" {
			t.Fatalf("events differ between runs (-first +second):\n%s", diff)
		}
		if diff := cmp.Diff(first.Diagnostics, second.Diagnostics); diff != "" {
			t.Fatalf("diagnostics differ between runs (-first +second):\n%s", diff)
		}
	})
}

// parseTime returns the fastest of three parses of line repeated n times.
func parseTime(line string, n int) time.Duration {
	src := []byte(strings.Repeat(line, n))
	tokens, _ := lexer.Tokenize(src)
	best := time.Duration(1<<63 - 1)
	for range 3 {
		began := time.Now()
		Parse(src, tokens)
		best = min(best, time.Since(began))
	}
	return max(best, time.Millisecond)
}

func TestRecoveryScalesLinearly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	lines := []string{
		")\n",
		"]]\n",
		"f(a b)\n",
		"if x y:\n    pass\n",
		"@\n",
		"x = 1 +\n",
	}
	for _, line := range lines {
		t.Run(fmt.Sprintf("%q", line), func(t *testing.T) {
			small := parseTime(line, 2000)
			large := parseTime(line, 32000)
			// 16x the input; quadratic recovery would take about 256x as long.
			if large > 64*small {
				t.Errorf("parse time grew from %v to %v for 16x the input", small, large)
			}
		})
	}
}
