package main

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/opal-lang/pysyntax/core/diagnostic"
)

// useColor determines if color output should be used for w.
// Respects --no-color flag and NO_COLOR environment variable.
func (a *app) useColor(w io.Writer) bool {
	if a.noColor {
		return false
	}
	if a.getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// palette holds the colors used for diagnostics. Every color is forced on or
// off so output does not depend on fatih/color's own terminal detection.
type palette struct {
	err   *color.Color
	warn  *color.Color
	info  *color.Color
	path  *color.Color
	hint  *color.Color
	faint *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow, color.Bold),
		info:  mk(color.FgCyan),
		path:  mk(color.Bold),
		hint:  mk(color.FgGreen),
		faint: mk(color.FgHiBlack),
	}
}

func (p palette) kind(k diagnostic.Kind) *color.Color {
	switch k {
	case diagnostic.SyntaxError:
		return p.err
	case diagnostic.VersionWarning:
		return p.warn
	default:
		return p.info
	}
}
