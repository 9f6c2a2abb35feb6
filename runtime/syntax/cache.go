package syntax

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// maxCachedChildren bounds which nodes are deduplicated. Small nodes repeat
// often; large ones rarely do and would only grow the table.
const maxCachedChildren = 3

// NodeCache deduplicates green tokens and small green nodes. It is safe for
// concurrent use and may be shared by any number of parses.
type NodeCache struct {
	mu     sync.Mutex
	tokens map[[digestSize]byte]*GreenToken
	nodes  map[[digestSize]byte]*GreenNode
	hits   int
	misses int
}

// NewNodeCache returns an empty cache.
func NewNodeCache() *NodeCache {
	return &NodeCache{
		tokens: make(map[[digestSize]byte]*GreenToken),
		nodes:  make(map[[digestSize]byte]*GreenNode),
	}
}

// CacheStats reports how often a lookup found an existing element.
type CacheStats struct {
	Hits   int
	Misses int
	Tokens int
	Nodes  int
}

// Stats returns a snapshot of the cache counters.
func (c *NodeCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Tokens: len(c.tokens), Nodes: len(c.nodes)}
}

// Token returns the shared green token for kind and text.
func (c *NodeCache) Token(kind lexer.TokenKind, text string, trivia bool) *GreenToken {
	sum := tokenDigest(kind, text, trivia)

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tokens[sum]; ok {
		c.hits++
		return t
	}
	c.misses++
	t := &GreenToken{kind: kind, trivia: trivia, text: text, sum: sum}
	c.tokens[sum] = t
	return t
}

// Node returns a green node for kind and children, shared with earlier
// identical nodes when it is small enough to be cached.
func (c *NodeCache) Node(kind parser.NodeKind, children []GreenElement) *GreenNode {
	n := newGreenNode(kind, children)
	if len(children) > maxCachedChildren {
		return n
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if shared, ok := c.nodes[n.sum]; ok {
		c.hits++
		return shared
	}
	c.misses++
	c.nodes[n.sum] = n
	return n
}

func newGreenNode(kind parser.NodeKind, children []GreenElement) *GreenNode {
	h, _ := blake2b.New256(nil)
	var buf [4]byte
	binary.BigEndian.PutUint16(buf[:2], uint16(kind))
	binary.BigEndian.PutUint16(buf[2:], uint16(len(children)))
	h.Write(buf[:])

	width := 0
	for _, child := range children {
		width += child.Width()
		sum := child.digest()
		h.Write(sum[:])
	}

	n := &GreenNode{kind: kind, width: width, children: children}
	h.Sum(n.sum[:0])
	return n
}

func tokenDigest(kind lexer.TokenKind, text string, trivia bool) [digestSize]byte {
	buf := make([]byte, 0, len(text)+3)
	buf = append(buf, 't', byte(kind))
	if trivia {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, text...)
	return blake2b.Sum256(buf)
}
