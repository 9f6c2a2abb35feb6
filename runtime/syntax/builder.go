package syntax

import (
	"github.com/opal-lang/pysyntax/core/invariant"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Build replays parser events into a green tree. cache may be nil; when set,
// tokens and small nodes are shared through it.
func Build(src []byte, res *parser.Result, cache *NodeCache) *GreenNode {
	invariant.NotNil(res, "res")

	b := &builder{src: src, res: res, cache: cache}
	// Forward-parent resolution rewrites events, so work on a copy.
	events := append([]parser.Event(nil), res.Events...)
	b.stack = append(b.stack, frame{})

	var chain []parser.NodeKind
	for i := range events {
		e := events[i]
		switch e.Kind {
		case parser.EventTombstone:

		case parser.EventOpen:
			chain = chain[:0]
			chain = append(chain, e.Node)
			for j, fp := i, e.ForwardParent; fp != 0; {
				j += int(fp)
				invariant.Invariant(j < len(events) && events[j].Kind == parser.EventOpen,
					"forward parent of event %d is not an open node", i)
				chain = append(chain, events[j].Node)
				fp = events[j].ForwardParent
				events[j].Kind = parser.EventTombstone
			}
			for k := len(chain) - 1; k >= 0; k-- {
				b.stack = append(b.stack, frame{kind: chain[k]})
			}

		case parser.EventClose:
			invariant.Invariant(len(b.stack) > 1, "close at event %d without an open node", i)
			top := b.stack[len(b.stack)-1]
			b.stack = b.stack[:len(b.stack)-1]
			b.add(b.node(top.kind, top.children))

		case parser.EventToken, parser.EventTrivia:
			b.add(b.token(int(e.Token), e.Kind == parser.EventTrivia))
		}
	}

	invariant.Postcondition(len(b.stack) == 1, "%d nodes left open after replay", len(b.stack)-1)
	roots := b.stack[0].children
	invariant.Postcondition(len(roots) == 1, "replay produced %d roots", len(roots))
	root, ok := roots[0].(*GreenNode)
	invariant.Postcondition(ok, "root is a token")
	invariant.Postcondition(root.Width() == len(src), "tree covers %d of %d bytes", root.Width(), len(src))
	return root
}

type frame struct {
	kind     parser.NodeKind
	children []GreenElement
}

type builder struct {
	src   []byte
	res   *parser.Result
	cache *NodeCache
	stack []frame
}

func (b *builder) add(el GreenElement) {
	top := &b.stack[len(b.stack)-1]
	top.children = append(top.children, el)
}

func (b *builder) token(i int, trivia bool) *GreenToken {
	tok := b.res.Tokens[i]
	text := string(tok.Text(b.src))
	if b.cache != nil {
		return b.cache.Token(tok.Kind, text, trivia)
	}
	return &GreenToken{kind: tok.Kind, trivia: trivia, text: text, sum: tokenDigest(tok.Kind, text, trivia)}
}

func (b *builder) node(kind parser.NodeKind, children []GreenElement) *GreenNode {
	if b.cache != nil {
		return b.cache.Node(kind, children)
	}
	return newGreenNode(kind, children)
}
