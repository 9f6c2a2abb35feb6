package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func FuzzParseLossless(f *testing.F) {
	seeds := []string{
		"",
		"x = 1\n",
		"def f():\n    pass",
		"if x\n    pass",
		"class Stack[T]:\n    pass\n",
		"x = f\"{a!r:>{w}} {f'{b}'}\"\n",
		"x = f\"{}\" f\"{a b}\"\n",
		"\ufeffprint('bom')\r\n",
		"if a:\n\tb\n        c\n  d\n",
		")))]]]}}}",
		"'unterminated\n\"\"\"also",
		"match x:\n    case {\"k\": v, **rest}:\n        pass\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	cache := NewNodeCache()
	f.Fuzz(func(t *testing.T, src []byte) {
		tree := Parse(src, WithCache(cache))
		if diff := cmp.Diff(string(src), tree.Root().Text()); diff != "" {
			t.Fatalf("tree text differs from input (-want +got):\n%s", diff)
		}
		for _, d := range tree.Errors() {
			if d.Range.Start < 0 || d.Range.End() > len(src) {
				t.Fatalf("diagnostic %q out of bounds: %s", d.Message, d.Range)
			}
		}

		var offset int
		for tok := tree.Root().FirstToken(); tok != nil; tok = tok.NextToken() {
			if tok.Range().Start != offset {
				t.Fatalf("token %s starts at %d, want %d", tok.Kind(), tok.Range().Start, offset)
			}
			offset = tok.Range().End()
		}
		if offset != len(src) {
			t.Fatalf("tokens end at %d, want %d", offset, len(src))
		}
	})
}
