package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opal-lang/pysyntax/internal/config"
	"github.com/opal-lang/pysyntax/internal/watch"
)

func (a *app) newCheckCmd() *cobra.Command {
	var format string
	var warnings bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report syntax errors in files and directories",
		Long: `Check parses every .py and .pyi file under the given paths (default: the
current directory) and prints one line per problem. The exit status is 1 when
any file has a syntax error. Use - to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				switch config.Format(format) {
				case config.FormatText, config.FormatJSON:
					a.cfg.Format = config.Format(format)
				default:
					return &CLIError{Message: fmt.Sprintf("unknown format: %s", format), Hint: "use text or json"}
				}
			}
			if cmd.Flags().Changed("warnings") {
				a.cfg.ShowWarnings = warnings
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			results, err := a.checkPaths(args)
			if err != nil {
				return err
			}
			if err := a.report(results, a.cfg.Format); err != nil {
				return err
			}

			errs, warns := counts(results)
			if a.cfg.Format == config.FormatText {
				_, _ = fmt.Fprintf(a.stderr, "%d %s checked, %d %s, %d %s\n",
					len(results), plural(len(results), "file"),
					errs, plural(errs, "error"),
					warns, plural(warns, "warning"))
			}
			if errs > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: text or json (default from config)")
	cmd.Flags().BoolVar(&warnings, "warnings", true, "Report version warnings and other non-error diagnostics")
	return cmd
}

// checkPaths checks each argument. Directories are searched for source files,
// skipping hidden directories and configured excludes; files named
// explicitly are always checked.
func (a *app) checkPaths(args []string) ([]result, error) {
	var results []result
	for _, arg := range args {
		if arg == "-" {
			src, err := a.readInput(arg)
			if err != nil {
				return nil, err
			}
			results = append(results, a.check("<stdin>", src))
			continue
		}

		files, err := a.sourceFiles(arg)
		if err != nil {
			return nil, err
		}
		for _, name := range files {
			src, err := a.readInput(name)
			if err != nil {
				return nil, err
			}
			results = append(results, a.check(name, src))
		}
	}
	return results, nil
}

// sourceFiles expands arg to the files it names, as paths relative to arg.
func (a *app) sourceFiles(arg string) ([]string, error) {
	root := a.abs(arg)
	info, err := a.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", arg, err)
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	var files []string
	err = afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.Join(arg, rel)
		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), ".") || a.cfg.Excluded(name)) {
				a.logger.Debug("skipping directory", "path", name)
				return filepath.SkipDir
			}
			return nil
		}
		if watch.IsSource(path) && !a.cfg.Excluded(name) {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", arg, err)
	}
	return files, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
