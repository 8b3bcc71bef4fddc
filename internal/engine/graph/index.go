package graph

import (
	"path"
	"sort"
	"strings"
)

// ModuleIndex maps a module name to every file that provides it. It also keeps a
// qualified view keyed by slash-joined path suffixes ("helpers/helper") so dotted
// imports can be matched against the directory layout.
type ModuleIndex struct {
	files     map[string][]string
	qualified map[string][]string
}

func NewModuleIndex(files []SourceFile) *ModuleIndex {
	idx := &ModuleIndex{
		files:     make(map[string][]string),
		qualified: make(map[string][]string),
	}
	for _, f := range files {
		idx.files[f.Module] = append(idx.files[f.Module], f.Path)
		for _, key := range qualifiedKeys(f) {
			idx.qualified[key] = append(idx.qualified[key], f.Path)
		}
	}
	for _, m := range []map[string][]string{idx.files, idx.qualified} {
		for key := range m {
			sort.Strings(m[key])
		}
	}
	return idx
}

// qualifiedKeys lists the multi-segment path suffixes of f without its extension.
// A package initialiser is also keyed by its directory path.
func qualifiedKeys(f SourceFile) []string {
	trimmed := strings.TrimSuffix(f.Path, path.Ext(f.Path))
	parts := strings.Split(trimmed, "/")
	if f.Module == "__init__" && len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	var keys []string
	for i := len(parts) - 2; i >= 0; i-- {
		keys = append(keys, strings.Join(parts[i:], "/"))
	}
	if f.Module == "__init__" && len(parts) > 0 && trimmed != "__init__" {
		keys = append(keys, parts[len(parts)-1])
	}
	return keys
}

// Lookup returns the files whose module name is module, sorted by path.
func (idx *ModuleIndex) Lookup(module string) []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.files[module]...)
}

// LookupQualified matches a dotted module path ("helpers.helper") against file
// path suffixes. Single-segment paths only match package directories.
func (idx *ModuleIndex) LookupQualified(dotted string) []string {
	if idx == nil || dotted == "" {
		return nil
	}
	return append([]string(nil), idx.qualified[strings.ReplaceAll(dotted, ".", "/")]...)
}

func (idx *ModuleIndex) Has(module string) bool {
	return idx != nil && len(idx.files[module]) > 0
}

func (idx *ModuleIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.files)
}
