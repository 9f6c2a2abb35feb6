package main

import (
	"fmt"
	"io"
	"strings"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// exitError ends the process with code after the command has already
// reported why.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}
	p := newPalette(useColor)

	switch e := err.(type) {
	case *CLIError:
		_, _ = fmt.Fprintf(w, "%s%s\n", p.err.Sprint("Error: "), e.Message)
		if e.Details != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", e.Details)
		}
		if e.Hint != "" {
			_, _ = fmt.Fprintf(w, "%s%s\n", p.hint.Sprint("Hint: "), e.Hint)
		}
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", p.err.Sprint("Error: "), err.Error())
	}
}
