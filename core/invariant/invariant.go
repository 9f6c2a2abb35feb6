// Package invariant holds the contract assertions used by the lexer, the
// event parser and the tree builder.
//
// A violated assertion is a bug in pysyntax itself, never a property of the
// source being parsed: malformed input is reported through diagnostics and
// must not reach these checks. Every function panics on violation.
package invariant

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
//
//	func (r *Reader) Seek(offset int) {
//	    invariant.Precondition(offset <= len(r.src), "seek past end: %d", offset)
//	}
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before returning.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency while work is in progress, most
// often that a loop consumed input or that markers are closed in order.
//
//	prev := p.pos
//	p.statement()
//	invariant.Invariant(p.pos > prev || p.atEOF(), "statement loop stuck at %d", p.pos)
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nil pointers.
func NotNil(value any, name string) {
	if value == nil || isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value any) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// InRange panics if value is outside [minVal, maxVal].
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d",
			name, minVal, maxVal, value)
	}
}

// ContextNotBackground panics if ctx is nil or context.Background().
// Long-running loops (watch mode, the language server) must be handed a
// cancellable context by their caller.
func ContextNotBackground(ctx context.Context, location string) {
	if ctx == nil {
		fail("PRECONDITION", "%s: context must not be nil", location)
	}
	if ctx == context.Background() {
		fail("PRECONDITION", "%s: context must not be Background()", location)
	}
}

// fail panics with a formatted message including the violating call site.
func fail(kind, format string, args ...any) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]any{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
