package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opal-lang/pysyntax/internal/watch"
)

func (a *app) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Re-check source files whenever they change",
		Long: `Watch checks every source file under the given directories (default: the
current directory), then re-checks each file as it is written until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(
				watch.WithLogger(a.logger),
				watch.WithFilter(func(path string) bool {
					return watch.IsSource(path) && !a.cfg.Excluded(a.rel(path))
				}),
			)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			for _, dir := range args {
				if err := w.Add(a.abs(dir)); err != nil {
					return err
				}
			}

			results, err := a.checkPaths(args)
			if err != nil {
				return err
			}
			if err := a.report(results, a.cfg.Format); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.stderr, "watching %d %s for changes\n", len(args), plural(len(args), "directory"))

			return w.Run(ctx, func(path string) {
				name := a.rel(path)
				src, err := a.readInput(path)
				if err != nil {
					a.logger.Warn("cannot read changed file", "path", name, "error", err)
					return
				}
				res := a.check(name, src)
				if err := a.report([]result{res}, a.cfg.Format); err != nil {
					a.logger.Warn("cannot report", "error", err)
				}
				if len(res.diags) == 0 {
					p := newPalette(a.useColor(a.stderr))
					_, _ = fmt.Fprintf(a.stderr, "%s %s\n", p.path.Sprint(name), p.hint.Sprint("ok"))
				}
			})
		},
	}
	return cmd
}

// rel shortens an absolute path under the working directory for display.
func (a *app) rel(path string) string {
	r, err := filepath.Rel(a.dir, path)
	if err != nil || strings.HasPrefix(r, "..") {
		return path
	}
	return r
}
