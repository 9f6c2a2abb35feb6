package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

func (a *app) newTokensCmd() *cobra.Command {
	var positions bool

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			src, err := a.readInput(name)
			if err != nil {
				return err
			}

			var opts []lexer.Option
			if a.debug {
				opts = append(opts, lexer.WithLogger(a.logger))
			}
			tokens, diags := lexer.Tokenize(src, opts...)

			idx := text.NewLineIndex(src)
			for _, tok := range tokens {
				if positions {
					pos := idx.Position(tok.Range.Start)
					_, _ = fmt.Fprintf(a.stdout, "%d:%d\t", pos.Line+1, pos.Column+1)
				}
				_, _ = fmt.Fprintf(a.stdout, "%s@%s %q\n", tok.Kind, tok.Range, tok.Text(src))
			}

			writeText(a.stderr, newPalette(a.useColor(a.stderr)), result{path: displayName(name), src: src, diags: diags})
			return nil
		},
	}

	cmd.Flags().BoolVar(&positions, "positions", false, "Prefix each token with its line and column")
	return cmd
}
