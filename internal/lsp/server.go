// Package lsp serves parse diagnostics over the Language Server Protocol.
// Documents are reparsed in full on every change and the resulting syntax
// errors and version warnings are published to the client.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	// Registers the commonlog backend used by glsp.
	_ "github.com/tliron/commonlog/simple"

	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/syntax"
)

const lsName = "pysyntax"

// Options configure what the server reports.
type Options struct {
	Version      string
	Target       version.Version
	ShowWarnings bool
}

// Server holds the open documents of one client connection.
type Server struct {
	opts    Options
	handler protocol.Handler
	server  *server.Server
	log     commonlog.Logger
	cache   *syntax.NodeCache

	mu   sync.Mutex
	docs map[protocol.DocumentUri]*document
}

type document struct {
	version protocol.Integer
	text    []byte
	tree    *syntax.Tree
}

// NewServer builds a server. Call RunStdio to serve.
func NewServer(opts Options) *Server {
	s := &Server{
		opts:  opts,
		log:   commonlog.GetLogger(lsName + ".server"),
		cache: syntax.NewNodeCache(),
		docs:  make(map[protocol.DocumentUri]*document),
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}
	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

// RunStdio serves one client over stdin and stdout.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.opts.Version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Infof("client initialized, target version %s", s.opts.Target)
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := s.update(params.TextDocument.URI, params.TextDocument.Version, []byte(params.TextDocument.Text))
	s.publish(ctx, params.TextDocument.URI, doc)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	var text []byte
	if doc, ok := s.docs[uri]; ok {
		text = doc.text
	}
	s.mu.Unlock()

	for _, change := range params.ContentChanges {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = []byte(change.Text)
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, change)
		default:
			s.log.Warningf("ignoring content change of type %T", change)
		}
	}

	doc := s.update(uri, params.TextDocument.Version, text)
	s.publish(ctx, uri, doc)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		s.mu.Lock()
		var v protocol.Integer
		if doc, ok := s.docs[uri]; ok {
			v = doc.version
		}
		s.mu.Unlock()
		s.publish(ctx, uri, s.update(uri, v, []byte(*params.Text)))
		return nil
	}

	s.mu.Lock()
	doc := s.docs[uri]
	s.mu.Unlock()
	if doc != nil {
		s.publish(ctx, uri, doc)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update reparses text and stores it as the current state of uri.
func (s *Server) update(uri protocol.DocumentUri, v protocol.Integer, text []byte) *document {
	tree := syntax.Parse(text, syntax.WithVersion(s.opts.Target), syntax.WithCache(s.cache))
	doc := &document{version: v, text: text, tree: tree}

	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()

	s.log.Debugf("parsed %s (version %d): %d diagnostics", uriToPath(uri), v, len(tree.Errors()))
	return doc
}

func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	v := protocol.UInteger(doc.version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: Diagnostics(doc.tree, s.opts.ShowWarnings),
	})
}

func uriToPath(uri protocol.DocumentUri) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
