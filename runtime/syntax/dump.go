package syntax

import (
	"fmt"
	"strings"
)

// Dump renders the subtree under n, one element per line, indented by depth:
//
//	Module@0..6
//	  AssignStmt@0..5
//	    NameExpr@0..2
//	      Name@0..1 "x"
//
// Trivia tokens are omitted; layout tokens are shown.
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0, false)
	return sb.String()
}

// DumpWithTrivia is Dump including whitespace and comment tokens.
func DumpWithTrivia(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0, true)
	return sb.String()
}

func dump(sb *strings.Builder, n *Node, depth int, trivia bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s@%s\n", indent, n.Kind(), n.Range())
	for _, c := range n.ChildrenWithTokens() {
		switch c := c.(type) {
		case *Node:
			dump(sb, c, depth+1, trivia)
		case *Token:
			if c.IsTrivia() && !trivia {
				continue
			}
			fmt.Fprintf(sb, "%s  %s@%s %q\n", indent, c.Kind(), c.Range(), c.Text())
		}
	}
}
