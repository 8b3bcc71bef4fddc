// # internal/engine/parser/parser.go
package parser

import (
	"context"
	"depgraph/internal/core/errors"
	"fmt"
	"path/filepath"
	"time"
)

// legacyStatements are Python 2 forms the grammar accepts without error nodes
// but the Python 3 compiler rejects.
var legacyStatements = map[string]map[string]string{
	LanguagePython: {
		"print_statement": "print statement",
		"exec_statement":  "exec statement",
	},
}

// Parser turns source bytes into syntax trees. It is safe for concurrent use.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

// NewParser keeps up to workers idle parsers per grammar, one per concurrent file worker.
func NewParser(loader *GrammarLoader, workers int) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for name, lang := range loader.languages {
		p.pools[name] = NewParserPool(lang, workers)
	}
	return p
}

// ParseFile parses content as the language registered for path's extension.
// A tree containing syntax errors, or Python 2 only statements, is closed and
// reported as CodeParseError.
func (p *Parser) ParseFile(ctx context.Context, path string, content []byte) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported file extension"),
			errors.CtxPath, path,
		)
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	sp := pool.Get()
	tree := sp.Parse(content, nil)
	pool.Put(sp)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "parser returned no tree"),
			errors.CtxPath, path,
		)
	}

	if root := tree.RootNode(); root.HasError() {
		loc := NodeLocation(FirstError(root))
		tree.Close()
		err := errors.New(errors.CodeParseError, fmt.Sprintf("syntax error at line %d, column %d", loc.Line, loc.Column))
		err = errors.AddContext(err, errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxLanguage, lang)
	}
	if legacy := FirstOfKind(tree.RootNode(), legacyStatements[lang]); legacy != nil {
		loc := NodeLocation(legacy)
		msg := fmt.Sprintf("syntax error at line %d, column %d: Python 2 %s",
			loc.Line, loc.Column, legacyStatements[lang][legacy.Kind()])
		tree.Close()
		err := errors.AddContext(errors.New(errors.CodeParseError, msg), errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxLanguage, lang)
	}

	return &Tree{
		Path:     path,
		Language: lang,
		Source:   content,
		tree:     tree,
	}, nil
}

func (p *Parser) detectLanguage(path string) string {
	return p.loader.LanguageForExtension(filepath.Ext(path))
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.Extensions()
}

// ActiveParsers reports how many pooled parsers are currently leased.
func (p *Parser) ActiveParsers() int {
	n := 0
	for _, pool := range p.pools {
		n += pool.Stats()
	}
	return n
}

// OldestLease reports the longest time any parser has been leased.
func (p *Parser) OldestLease() time.Duration {
	var oldest time.Duration
	for _, pool := range p.pools {
		if d := pool.OldestLease(); d > oldest {
			oldest = d
		}
	}
	return oldest
}

// Close releases the pooled parsers. Trees already returned stay valid.
func (p *Parser) Close() {
	for _, pool := range p.pools {
		pool.Close()
	}
}
