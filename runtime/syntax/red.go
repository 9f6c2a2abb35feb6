package syntax

import (
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Element is a *Node or a *Token.
type Element interface {
	Range() text.Range
	Text() string
	Parent() *Node
	element()
}

// Node is a positioned view of a green node. Views are created on demand and
// are cheap; compare them by Range and Kind, not by pointer.
type Node struct {
	green  *GreenNode
	parent *Node
	offset int
	index  int // position among the parent's children, tokens included
}

// NewRoot returns the red view of a green root starting at offset 0.
func NewRoot(green *GreenNode) *Node {
	return &Node{green: green}
}

func (n *Node) element() {}

// Kind returns the node kind.
func (n *Node) Kind() parser.NodeKind { return n.green.kind }

// Green returns the underlying green node.
func (n *Node) Green() *GreenNode { return n.green }

// Range returns the absolute byte range, trivia included.
func (n *Node) Range() text.Range { return text.Range{Start: n.offset, Len: n.green.width} }

// Text returns the source text under n.
func (n *Node) Text() string { return n.green.Text() }

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// ChildrenWithTokens returns every direct child in order.
func (n *Node) ChildrenWithTokens() []Element {
	out := make([]Element, 0, len(n.green.children))
	offset := n.offset
	for i, c := range n.green.children {
		out = append(out, n.wrap(i, c, offset))
		offset += c.Width()
	}
	return out
}

// Children returns the direct child nodes in order.
func (n *Node) Children() []*Node {
	var out []*Node
	offset := n.offset
	for i, c := range n.green.children {
		if g, ok := c.(*GreenNode); ok {
			out = append(out, &Node{green: g, parent: n, offset: offset, index: i})
		}
		offset += c.Width()
	}
	return out
}

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node {
	return n.nodeFrom(0, 1)
}

// LastChild returns the last child node, or nil.
func (n *Node) LastChild() *Node {
	return n.nodeFrom(len(n.green.children)-1, -1)
}

// NextSibling returns the next node under the same parent, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.nodeFrom(n.index+1, 1)
}

// PrevSibling returns the previous node under the same parent, or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.nodeFrom(n.index-1, -1)
}

// FirstToken returns the first token in the subtree, trivia included, or nil
// for a node without tokens.
func (n *Node) FirstToken() *Token {
	return n.tokenFrom(0, 1)
}

// LastToken returns the last token in the subtree that has text, skipping
// the zero-width Dedent tokens that close blocks. A node holding only
// zero-width tokens returns its last one. It returns nil for a node without
// tokens.
func (n *Node) LastToken() *Token {
	last := n.tokenFrom(len(n.green.children)-1, -1)
	if last == nil || last.Range().Len > 0 {
		return last
	}
	for t := last.PrevToken(); t != nil; t = t.PrevToken() {
		r := t.Range()
		if r.Start < n.offset {
			break
		}
		if r.Len > 0 {
			return t
		}
	}
	return last
}

// Walk visits n and its descendant nodes in preorder. Returning false from
// visit skips the children of that node.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(visit)
	}
}

// Descendants returns n and every node below it in preorder.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		out = append(out, d)
		return true
	})
	return out
}

// TokenAtOffset returns the non-empty token covering offset. At the end of
// the node it returns the last token with text. It returns nil when offset is
// outside n.
func (n *Node) TokenAtOffset(offset int) *Token {
	r := n.Range()
	if offset < r.Start || offset > r.End() {
		return nil
	}
	if offset == r.End() {
		return n.LastToken()
	}
	cur := n
	for {
		var next *Node
		start := cur.offset
	children:
		for i, c := range cur.green.children {
			w := c.Width()
			if w > 0 && offset >= start && offset < start+w {
				switch c := c.(type) {
				case *GreenToken:
					return &Token{green: c, parent: cur, offset: start, index: i}
				case *GreenNode:
					next = &Node{green: c, parent: cur, offset: start, index: i}
				}
				break children
			}
			start += w
		}
		if next == nil {
			return nil
		}
		cur = next
	}
}

// CoveringElement returns the deepest element whose range contains r.
func (n *Node) CoveringElement(r text.Range) Element {
	if !n.Range().ContainsRange(r) {
		return nil
	}
	cur := n
	for {
		var next *Node
		for _, c := range cur.ChildrenWithTokens() {
			cr := c.Range()
			if cr.IsEmpty() || !cr.ContainsRange(r) {
				continue
			}
			if tok, ok := c.(*Token); ok {
				return tok
			}
			next = c.(*Node)
			break
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

func (n *Node) wrap(i int, c GreenElement, offset int) Element {
	switch c := c.(type) {
	case *GreenToken:
		return &Token{green: c, parent: n, offset: offset, index: i}
	case *GreenNode:
		return &Node{green: c, parent: n, offset: offset, index: i}
	}
	return nil
}

// childOffset returns the absolute offset of child i.
func (n *Node) childOffset(i int) int {
	offset := n.offset
	for _, c := range n.green.children[:i] {
		offset += c.Width()
	}
	return offset
}

// nodeFrom scans children from index i in direction step for a node.
func (n *Node) nodeFrom(i, step int) *Node {
	for ; i >= 0 && i < len(n.green.children); i += step {
		if g, ok := n.green.children[i].(*GreenNode); ok {
			return &Node{green: g, parent: n, offset: n.childOffset(i), index: i}
		}
	}
	return nil
}

// tokenFrom scans children from index i in direction step for the nearest
// token, descending into nodes.
func (n *Node) tokenFrom(i, step int) *Token {
	for ; i >= 0 && i < len(n.green.children); i += step {
		switch c := n.green.children[i].(type) {
		case *GreenToken:
			return &Token{green: c, parent: n, offset: n.childOffset(i), index: i}
		case *GreenNode:
			child := &Node{green: c, parent: n, offset: n.childOffset(i), index: i}
			first := 0
			if step < 0 {
				first = len(c.children) - 1
			}
			if tok := child.tokenFrom(first, step); tok != nil {
				return tok
			}
		}
	}
	return nil
}

// Token is a positioned view of a green token.
type Token struct {
	green  *GreenToken
	parent *Node
	offset int
	index  int
}

func (t *Token) element() {}

// Kind returns the token kind.
func (t *Token) Kind() lexer.TokenKind { return t.green.kind }

// Range returns the absolute byte range.
func (t *Token) Range() text.Range { return text.Range{Start: t.offset, Len: len(t.green.text)} }

// Text returns the token text.
func (t *Token) Text() string { return t.green.text }

// Parent returns the node holding t.
func (t *Token) Parent() *Node { return t.parent }

// IsTrivia reports whether t was attached as trivia.
func (t *Token) IsTrivia() bool { return t.green.trivia }

// NextToken returns the following token in the tree, or nil at the end.
func (t *Token) NextToken() *Token {
	for p, idx := t.parent, t.index; p != nil; p, idx = p.parent, p.index {
		if tok := p.tokenFrom(idx+1, 1); tok != nil {
			return tok
		}
	}
	return nil
}

// PrevToken returns the preceding token in the tree, or nil at the start.
func (t *Token) PrevToken() *Token {
	for p, idx := t.parent, t.index; p != nil; p, idx = p.parent, p.index {
		if tok := p.tokenFrom(idx-1, -1); tok != nil {
			return tok
		}
	}
	return nil
}
