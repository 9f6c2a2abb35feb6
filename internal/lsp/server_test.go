package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/syntax"
)

const uri = "file:///tmp/project/main.py"

type recorder struct {
	published []protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				r.published = append(r.published, params.(protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (r *recorder) last(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	require.NotEmpty(t, r.published)
	return r.published[len(r.published)-1]
}

func newTestServer(target string) *Server {
	return NewServer(Options{Version: "test", Target: version.MustParse(target), ShowWarnings: true})
}

func open(t *testing.T, s *Server, ctx *glsp.Context, src string) {
	t.Helper()
	require.NoError(t, s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "python", Version: 1, Text: src},
	}))
}

func TestInitializeAdvertisesSync(t *testing.T) {
	s := newTestServer("3.12")
	res, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	result := res.(protocol.InitializeResult)
	assert.Equal(t, "pysyntax", result.ServerInfo.Name)
	opts := result.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *opts.Change)
	assert.True(t, *opts.OpenClose)
}

func TestPublishOnOpen(t *testing.T) {
	s := newTestServer("3.12")
	rec := &recorder{}
	open(t, s, rec.context(), "if x\n    pass\n")

	got := rec.last(t)
	assert.Equal(t, uri, got.URI)
	require.NotNil(t, got.Version)
	assert.Equal(t, protocol.UInteger(1), *got.Version)
	require.Len(t, got.Diagnostics, 1)

	d := got.Diagnostics[0]
	assert.Equal(t, "expected ':' after 'if' condition", d.Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, protocol.UInteger(0), d.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(4), d.Range.Start.Character)
}

func TestIncrementalChange(t *testing.T) {
	s := newTestServer("3.12")
	rec := &recorder{}
	ctx := rec.context()
	open(t, s, ctx, "if x\n    pass\n")

	require.NoError(t, s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 4},
					End:   protocol.Position{Line: 0, Character: 4},
				},
				Text: ":",
			},
		},
	}))

	got := rec.last(t)
	assert.Equal(t, protocol.UInteger(2), *got.Version)
	assert.Empty(t, got.Diagnostics)
	assert.Equal(t, "if x:\n    pass\n", string(s.docs[uri].text))
}

func TestWholeDocumentChange(t *testing.T) {
	s := newTestServer("3.11")
	rec := &recorder{}
	ctx := rec.context()
	open(t, s, ctx, "x = 1\n")
	assert.Empty(t, rec.last(t).Diagnostics)

	require.NoError(t, s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "type X = int\n"},
		},
	}))

	got := rec.last(t)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *got.Diagnostics[0].Severity)
}

func TestSaveAndClose(t *testing.T) {
	s := newTestServer("3.12")
	rec := &recorder{}
	ctx := rec.context()
	open(t, s, ctx, "x = 1\n")

	saved := "x = (\n"
	require.NoError(t, s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Text:         &saved,
	}))
	assert.NotEmpty(t, rec.last(t).Diagnostics)

	require.NoError(t, s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, rec.last(t).Diagnostics)
	assert.NotContains(t, s.docs, uri)
}

func TestDiagnosticsHideWarnings(t *testing.T) {
	tree := syntax.Parse([]byte("type X = int\n"), syntax.WithVersion(version.MustParse("3.11")))
	assert.Len(t, Diagnostics(tree, true), 1)
	assert.Empty(t, Diagnostics(tree, false))
}

func TestDiagnosticsUseUTF16Columns(t *testing.T) {
	tree := syntax.Parse([]byte("s = '😀' +\n"))
	ds := Diagnostics(tree, true)
	require.NotEmpty(t, ds)
	// The emoji is four bytes but two UTF-16 units.
	assert.Equal(t, protocol.UInteger(10), ds[0].Range.Start.Character)
}

func TestApplyChange(t *testing.T) {
	src := []byte("a = 1\nb = 2\n")
	edit := func(sl, sc, el, ec uint32, text string) string {
		return string(applyChange(src, protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: sl, Character: sc},
				End:   protocol.Position{Line: el, Character: ec},
			},
			Text: text,
		}))
	}

	assert.Equal(t, "a = 10\nb = 2\n", edit(0, 5, 0, 5, "0"))
	assert.Equal(t, "a = 1\nc = 2\n", edit(1, 0, 1, 1, "c"))
	assert.Equal(t, "a = 2\n", edit(0, 4, 1, 4, ""))
	assert.Equal(t, "whole", string(applyChange(src, protocol.TextDocumentContentChangeEvent{Text: "whole"})))
}
