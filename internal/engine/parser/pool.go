// # internal/engine/parser/pool.go
package parser

import (
	"sync"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for a single grammar so concurrent
// file workers do not pay sitter.NewParser() per file.
//
//	sp := pool.Get()
//	tree := sp.Parse(source, nil)
//	pool.Put(sp)
//
// Trees outlive the parser that produced them, so Put may run before the tree is used.
// At most capacity idle parsers are kept; surplus parsers are closed on Put.
type ParserPool struct {
	lang *sitter.Language
	idle chan *sitter.Parser

	mu     sync.Mutex
	closed bool
	leased map[*sitter.Parser]time.Time
}

func NewParserPool(lang *sitter.Language, capacity int) *ParserPool {
	if capacity < 1 {
		capacity = 1
	}
	return &ParserPool{
		lang:   lang,
		idle:   make(chan *sitter.Parser, capacity),
		leased: make(map[*sitter.Parser]time.Time),
	}
}

// Get returns a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	var sp *sitter.Parser
	select {
	case sp = <-p.idle:
	default:
		sp = sitter.NewParser()
	}
	// Reset() keeps the language, but an external SetLanguage may not.
	_ = sp.SetLanguage(p.lang)

	p.mu.Lock()
	p.leased[sp] = time.Now()
	p.mu.Unlock()
	return sp
}

// Put resets sp and makes it available again. nil is ignored.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.leased, sp)
	if p.closed {
		sp.Close()
		return
	}
	select {
	case p.idle <- sp:
	default:
		sp.Close()
	}
}

// Close releases every idle parser. Parsers still leased are closed when put back.
func (p *ParserPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for {
		select {
		case sp := <-p.idle:
			sp.Close()
		default:
			return
		}
	}
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.leased)
}

// Idle returns the number of parsers waiting for reuse.
func (p *ParserPool) Idle() int {
	return len(p.idle)
}

// OldestLease returns how long the longest outstanding lease has been held.
func (p *ParserPool) OldestLease() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var oldest time.Duration
	now := time.Now()
	for _, at := range p.leased {
		if d := now.Sub(at); d > oldest {
			oldest = d
		}
	}
	return oldest
}
