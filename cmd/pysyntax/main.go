package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/internal/config"
	"github.com/opal-lang/pysyntax/runtime/syntax"
)

// buildVersion is set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

// app carries what every command needs. Tests build one around an in-memory
// filesystem and buffers.
type app struct {
	fs     afero.Fs
	dir    string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath    string
	targetVersion string
	noColor       bool
	debug         bool

	cfg    config.Config
	logger *slog.Logger
}

func main() {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	a := &app{
		fs:     afero.NewOsFs(),
		dir:    dir,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}

	if err := a.rootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		FormatError(a.stderr, err, a.useColor(a.stderr))
		os.Exit(2)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pysyntax",
		Short:         "Parse Python source into lossless syntax trees and report syntax errors",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: nearest "+config.FileName+")")
	root.PersistentFlags().StringVar(&a.targetVersion, "target-version", "", "Language version to check against, e.g. 3.12")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(a.newParseCmd())
	root.AddCommand(a.newTokensCmd())
	root.AddCommand(a.newCheckCmd())
	root.AddCommand(a.newWatchCmd())
	root.AddCommand(a.newLSPCmd())
	return root
}

// setup runs before every command: logging first, then config, then flag
// overrides.
func (a *app) setup() error {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.fs, a.configPath)
	} else {
		a.cfg, err = config.Find(a.fs, a.dir)
	}
	if err != nil {
		return err
	}
	if a.cfg.Path != "" {
		a.logger.Debug("loaded config", "path", a.cfg.Path, "target", a.cfg.TargetVersion.String())
	}

	if a.targetVersion != "" {
		v, err := version.Parse(a.targetVersion)
		if err != nil {
			return &CLIError{
				Message: fmt.Sprintf("invalid --target-version %q", a.targetVersion),
				Details: err.Error(),
				Hint:    "use a release number such as 3.12",
			}
		}
		a.cfg.TargetVersion = v
	}
	return nil
}

func (a *app) parseOptions() []syntax.Option {
	opts := []syntax.Option{syntax.WithVersion(a.cfg.TargetVersion)}
	if a.debug {
		opts = append(opts, syntax.WithLogger(a.logger), syntax.WithTelemetry())
	}
	return opts
}

// readInput returns the named file, or stdin for "-".
func (a *app) readInput(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := afero.ReadFile(a.fs, a.abs(name))
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", name, err)
	}
	return data, nil
}

func (a *app) abs(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.dir, name)
}

// logTelemetry reports phase timings at debug level.
func (a *app) logTelemetry(name string, tree *syntax.Tree) {
	tel := tree.Telemetry()
	if tel == nil {
		return
	}
	a.logger.Debug("parsed",
		"file", name,
		"tokens", tel.TokenCount,
		"events", tel.EventCount,
		"interpolations", tel.Interpolations,
		"lex", tel.LexTime,
		"parse", tel.ParseTime,
		"build", tel.BuildTime,
	)
}
