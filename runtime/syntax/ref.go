package syntax

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Ref identifies a node or token by kind and range. It holds no pointers, so
// it can be stored or sent elsewhere and resolved against a tree of the same
// source later.
type Ref struct {
	Kind  string `json:"kind" cbor:"1,keyasint"`
	Token bool   `json:"token,omitempty" cbor:"2,keyasint,omitempty"`
	Start int    `json:"start" cbor:"3,keyasint"`
	Len   int    `json:"len" cbor:"4,keyasint"`
}

// RefOf returns the reference for a node or token.
func RefOf(el Element) Ref {
	r := el.Range()
	switch el := el.(type) {
	case *Node:
		return Ref{Kind: el.Kind().String(), Start: r.Start, Len: r.Len}
	case *Token:
		return Ref{Kind: el.Kind().String(), Token: true, Start: r.Start, Len: r.Len}
	}
	return Ref{}
}

// Range returns the referenced byte range.
func (r Ref) Range() text.Range {
	return text.Range{Start: r.Start, Len: r.Len}
}

func (r Ref) String() string {
	return fmt.Sprintf("%s@%s", r.Kind, r.Range())
}

// Resolve finds the referenced element under root. Where nested nodes share
// kind and range the outermost one wins. It returns nil when nothing matches.
func (r Ref) Resolve(root *Node) Element {
	if root == nil {
		return nil
	}
	return resolve(root, r)
}

func resolve(n *Node, r Ref) Element {
	want := r.Range()
	if !n.Range().ContainsRange(want) {
		return nil
	}
	if !r.Token && n.Range() == want && n.Kind().String() == r.Kind {
		return n
	}
	for _, c := range n.ChildrenWithTokens() {
		switch c := c.(type) {
		case *Token:
			if r.Token && c.Range() == want && c.Kind().String() == r.Kind {
				return c
			}
		case *Node:
			if found := resolve(c, r); found != nil {
				return found
			}
		}
	}
	return nil
}

// MarshalBinary encodes r as deterministic CBOR.
func (r Ref) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// The alias has no MarshalBinary, so cbor does not recurse into this one.
	type refAlias Ref
	data, err := encMode.Marshal(refAlias(r))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// UnmarshalRef decodes data produced by Ref.MarshalBinary and checks that
// the kind name exists.
func UnmarshalRef(data []byte) (Ref, error) {
	type refAlias Ref
	var alias refAlias
	if err := cbor.Unmarshal(data, &alias); err != nil {
		return Ref{}, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	r := Ref(alias)

	if r.Token {
		if _, ok := lexer.TokenKindByName(r.Kind); !ok {
			return Ref{}, fmt.Errorf("unknown token kind %q", r.Kind)
		}
	} else if _, ok := parser.NodeKindByName(r.Kind); !ok {
		return Ref{}, fmt.Errorf("unknown node kind %q", r.Kind)
	}
	if r.Start < 0 || r.Len < 0 {
		return Ref{}, fmt.Errorf("invalid range %d+%d", r.Start, r.Len)
	}
	return r, nil
}
