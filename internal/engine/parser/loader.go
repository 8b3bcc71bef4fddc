// # internal/engine/parser/loader.go
package parser

import (
	"depgraph/internal/core/errors"
	"depgraph/internal/shared/util"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// DefaultExtensions lists the file extensions parsed as Python source.
var DefaultExtensions = []string{".py"}

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

// NewGrammarLoader loads the Python grammar and maps every extension in exts to it.
// An empty exts falls back to DefaultExtensions.
func NewGrammarLoader(exts []string) (*GrammarLoader, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if lang == nil {
		return nil, errors.New(errors.CodeInternal, "python grammar unavailable")
	}

	l := &GrammarLoader{
		languages:  map[string]*sitter.Language{LanguagePython: lang},
		extensions: make(map[string]string),
	}
	for ext := range util.NormalizeExtensions(exts) {
		l.extensions[ext] = LanguagePython
	}
	if len(l.extensions) == 0 {
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("no usable extensions in %v", exts))
	}
	return l, nil
}

func (l *GrammarLoader) Language(name string) *sitter.Language {
	return l.languages[name]
}

func (l *GrammarLoader) LanguageForExtension(ext string) string {
	return l.extensions[strings.ToLower(ext)]
}

func (l *GrammarLoader) Extensions() []string {
	return util.SortedStringKeys(l.extensions)
}
