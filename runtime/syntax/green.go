// Package syntax builds lossless syntax trees from parser events and exposes
// them through positioned, navigable views.
//
// A green tree holds kinds, text and widths but no positions, so identical
// subtrees can be shared. A red tree wraps a green tree with absolute
// offsets and parent links and is created lazily while navigating.
package syntax

import (
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

const digestSize = 32

// GreenElement is a GreenNode or a GreenToken.
type GreenElement interface {
	Width() int
	digest() [digestSize]byte
}

// GreenToken is an immutable token: kind and text, no position.
type GreenToken struct {
	kind   lexer.TokenKind
	trivia bool
	text   string
	sum    [digestSize]byte
}

// Kind returns the token kind.
func (t *GreenToken) Kind() lexer.TokenKind { return t.kind }

// Text returns the token text.
func (t *GreenToken) Text() string { return t.text }

// Width returns the text length in bytes.
func (t *GreenToken) Width() int { return len(t.text) }

// IsTrivia reports whether the parser attached the token as trivia. This
// includes newlines inside brackets.
func (t *GreenToken) IsTrivia() bool { return t.trivia }

func (t *GreenToken) digest() [digestSize]byte { return t.sum }

// GreenNode is an immutable interior node.
type GreenNode struct {
	kind     parser.NodeKind
	width    int
	children []GreenElement
	sum      [digestSize]byte
}

// Kind returns the node kind.
func (n *GreenNode) Kind() parser.NodeKind { return n.kind }

// Width returns the total text length of the subtree.
func (n *GreenNode) Width() int { return n.width }

// Children returns the direct children. The slice must not be modified.
func (n *GreenNode) Children() []GreenElement { return n.children }

func (n *GreenNode) digest() [digestSize]byte { return n.sum }

// Text concatenates the text of every token under n.
func (n *GreenNode) Text() string {
	buf := make([]byte, 0, n.width)
	return string(n.appendText(buf))
}

func (n *GreenNode) appendText(buf []byte) []byte {
	for _, c := range n.children {
		switch c := c.(type) {
		case *GreenToken:
			buf = append(buf, c.text...)
		case *GreenNode:
			buf = c.appendText(buf)
		}
	}
	return buf
}
