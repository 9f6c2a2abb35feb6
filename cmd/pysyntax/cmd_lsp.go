package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/opal-lang/pysyntax/internal/lsp"
)

func (a *app) newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbosity := 1
			if a.debug {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)

			server := lsp.NewServer(lsp.Options{
				Version:      buildVersion,
				Target:       a.cfg.TargetVersion,
				ShowWarnings: a.cfg.ShowWarnings,
			})
			return server.RunStdio()
		},
	}
}
