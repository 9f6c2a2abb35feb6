package parser

import (
	"fmt"

	"github.com/opal-lang/pysyntax/core/invariant"
)

// EventKind is the kind of a parse event.
type EventKind uint8

const (
	EventOpen      EventKind = iota // open a node of kind Node
	EventClose                      // close the innermost open node
	EventToken                      // attach token Token to the open node
	EventTrivia                     // attach token Token as insignificant trivia
	EventTombstone                  // an abandoned Open; ignored by tree builders
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "Open"
	case EventClose:
		return "Close"
	case EventToken:
		return "Token"
	case EventTrivia:
		return "Trivia"
	case EventTombstone:
		return "Tombstone"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is one step of the flat parse output. A tree is rebuilt by replaying
// events in order.
//
// ForwardParent is set on an Open event when a later Open (created by
// precede) must become its parent. It is the distance to that event, or 0.
type Event struct {
	Kind          EventKind
	Node          NodeKind
	Token         uint32
	ForwardParent uint32
}

func (e Event) String() string {
	switch e.Kind {
	case EventOpen:
		if e.ForwardParent != 0 {
			return fmt.Sprintf("Open(%s, +%d)", e.Node, e.ForwardParent)
		}
		return fmt.Sprintf("Open(%s)", e.Node)
	case EventToken, EventTrivia:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Token)
	default:
		return e.Kind.String()
	}
}

// Marker is an open node. It must be completed or undone before the node
// around it closes.
type Marker struct {
	pos       int // index of the Open event
	firstTok  int // first significant token inside the node
	preceding bool
}

// CompletedMarker is a closed node that can still be wrapped by precede.
type CompletedMarker struct {
	pos      int
	kind     NodeKind
	firstTok int
	lastTok  int // last significant token, or firstTok-1 for empty nodes
}

// Kind returns the node kind the marker was completed with.
func (cm CompletedMarker) Kind() NodeKind {
	return cm.kind
}

// openNode is an entry of the open-node stack.
type openNode struct {
	pos      int  // index of the Open event
	tokens   int  // token events emitted before the node opened
	precedes bool // target of a forward-parent link
}

// start opens a node of kind at the current position.
func (p *parser) start(kind NodeKind) Marker {
	pos := len(p.events)
	p.events = append(p.events, Event{Kind: EventOpen, Node: kind})
	p.open = append(p.open, openNode{pos: pos, tokens: p.tokenEvents})
	if len(p.open) > p.maxDepth {
		p.maxDepth = len(p.open)
	}
	return Marker{pos: pos, firstTok: p.pos}
}

// complete closes m as kind.
func (p *parser) complete(m Marker, kind NodeKind) CompletedMarker {
	p.popOpen(m)
	p.events[m.pos].Node = kind
	p.events = append(p.events, Event{Kind: EventClose})
	return CompletedMarker{pos: m.pos, kind: kind, firstTok: m.firstTok, lastTok: p.lastTok}
}

// setKind changes the kind of a node that is still open.
func (p *parser) setKind(m Marker, kind NodeKind) {
	invariant.Precondition(p.events[m.pos].Kind == EventOpen, "setKind of abandoned marker at event %d", m.pos)
	p.events[m.pos].Node = kind
}

// undo abandons m. Its children become children of the enclosing node.
func (p *parser) undo(m Marker) {
	invariant.Precondition(!m.preceding, "undo of a preceding marker at event %d", m.pos)
	p.popOpen(m)
	p.events[m.pos].Kind = EventTombstone
}

// precede opens a new node that will become the parent of cm.
func (p *parser) precede(cm CompletedMarker) Marker {
	m := p.start(Error)
	p.events[cm.pos].ForwardParent = uint32(m.pos - cm.pos)
	p.open[len(p.open)-1].precedes = true
	m.firstTok = cm.firstTok
	m.preceding = true
	return m
}

func (p *parser) popOpen(m Marker) {
	n := len(p.open)
	invariant.Invariant(n > 0 && p.open[n-1].pos == m.pos,
		"marker at event %d is not the innermost open node", m.pos)
	p.open = p.open[:n-1]
}

// closeTo closes every node opened above depth. Nodes that hold tokens keep
// their kind; if nothing was consumed since they opened they are undone.
// A forward-parent target is always closed, since an earlier node points at it.
func (p *parser) closeTo(depth int) {
	for len(p.open) > depth {
		top := p.open[len(p.open)-1]
		p.open = p.open[:len(p.open)-1]
		if p.tokenEvents > top.tokens || top.precedes {
			p.events = append(p.events, Event{Kind: EventClose})
			continue
		}
		p.events[top.pos].Kind = EventTombstone
	}
}
