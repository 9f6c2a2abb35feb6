package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opal-lang/pysyntax/runtime/syntax"
)

func (a *app) newParseCmd() *cobra.Command {
	var asJSON bool
	var trivia bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of a file",
		Long: `Parse prints the concrete syntax tree of a file (or stdin when the file is
omitted or -), one element per line with its byte range. Diagnostics go to
stderr; the tree is printed even when the input has errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			src, err := a.readInput(name)
			if err != nil {
				return err
			}

			tree := syntax.Parse(src, a.parseOptions()...)
			a.logTelemetry(name, tree)

			switch {
			case asJSON:
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(toJSONTree(tree.Root(), trivia)); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case trivia:
				_, _ = fmt.Fprint(a.stdout, syntax.DumpWithTrivia(tree.Root()))
			default:
				_, _ = fmt.Fprint(a.stdout, syntax.Dump(tree.Root()))
			}

			res := result{path: displayName(name), src: src, diags: tree.Errors()}
			writeText(a.stderr, newPalette(a.useColor(a.stderr)), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	cmd.Flags().BoolVar(&trivia, "trivia", false, "Include whitespace and comment tokens")
	return cmd
}

// jsonElement is a node or token in the JSON tree. The embedded Ref gives
// kind and range; tokens carry their text and nodes their children.
type jsonElement struct {
	syntax.Ref
	Text     *string       `json:"text,omitempty"`
	Children []jsonElement `json:"children,omitempty"`
}

func toJSONTree(n *syntax.Node, trivia bool) jsonElement {
	el := jsonElement{Ref: syntax.RefOf(n), Children: []jsonElement{}}
	for _, c := range n.ChildrenWithTokens() {
		switch c := c.(type) {
		case *syntax.Node:
			el.Children = append(el.Children, toJSONTree(c, trivia))
		case *syntax.Token:
			if c.IsTrivia() && !trivia {
				continue
			}
			txt := c.Text()
			el.Children = append(el.Children, jsonElement{Ref: syntax.RefOf(c), Text: &txt})
		}
	}
	return el
}

func displayName(name string) string {
	if name == "-" {
		return "<stdin>"
	}
	return name
}
