// # internal/engine/graph/model.go
package graph

import (
	"fmt"
	"path"
	"strings"
)

// ModuleBodyName marks the synthetic function holding a file's top-level statements.
const ModuleBodyName = "__module__"

type SourceFile struct {
	Path   string // slash-separated, relative to the scan root
	Module string // base name without extension
}

// Name is the file's base name, used as the display name of File nodes.
func (f SourceFile) Name() string {
	return path.Base(f.Path)
}

// NewSourceFile derives the module name from relPath's base name.
func NewSourceFile(relPath string) SourceFile {
	relPath = path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	base := path.Base(relPath)
	return SourceFile{
		Path:   relPath,
		Module: strings.TrimSuffix(base, path.Ext(base)),
	}
}

// FunctionID identifies a function by file, simple name and declaration line.
type FunctionID struct {
	File string
	Name string
	Line int
}

func (id FunctionID) String() string {
	return fmt.Sprintf("%s:%s:%d", id.File, id.Name, id.Line)
}

func (id FunctionID) IsModuleBody() bool {
	return id.Name == ModuleBodyName && id.Line == 0
}

func ModuleBodyID(file string) FunctionID {
	return FunctionID{File: file, Name: ModuleBodyName}
}

type FunctionNode struct {
	ID   FunctionID
	File string
	Name string
	Line int
}

func NewFunctionNode(file, name string, line int) FunctionNode {
	return FunctionNode{
		ID:   FunctionID{File: file, Name: name, Line: line},
		File: file,
		Name: name,
		Line: line,
	}
}

func ModuleBodyNode(file string) FunctionNode {
	return NewFunctionNode(file, ModuleBodyName, 0)
}

type DependsOnEdge struct {
	From string
	To   string
}

type ContainsEdge struct {
	File     string
	Function FunctionID
}

type CallsEdge struct {
	Caller FunctionID
	Callee FunctionID
}

// CallSite is an unresolved call: the enclosing function and the callee's simple name.
type CallSite struct {
	Caller FunctionID
	Callee string
	Line   int
}

type SkipReason string

const (
	SkipRead  SkipReason = "read"
	SkipParse SkipReason = "parse"
)

// SkippedFile is a file that stays in the graph but contributed no imports or calls.
type SkippedFile struct {
	Path   string
	Reason SkipReason
	Err    error
}

func (s SkippedFile) String() string {
	if s.Err == nil {
		return fmt.Sprintf("%s (%s)", s.Path, s.Reason)
	}
	return fmt.Sprintf("%s (%s): %v", s.Path, s.Reason, s.Err)
}

type Stats struct {
	Files     int
	Functions int
	DependsOn int
	Contains  int
	Calls     int
	Skipped   int

	CallSites  int
	Unresolved int // call sites with no candidate
}

func (s Stats) Nodes() int {
	return s.Files + s.Functions
}

func (s Stats) Edges() int {
	return s.DependsOn + s.Contains + s.Calls
}

// Model is the assembled result of one analysis run. It is never mutated after
// Assemble returns; accessors hand out copies.
type Model struct {
	files     []SourceFile
	functions []FunctionNode
	dependsOn []DependsOnEdge
	contains  []ContainsEdge
	calls     []CallsEdge
	skipped   []SkippedFile

	callSites  int
	unresolved int
}

func (m *Model) Files() []SourceFile {
	return append([]SourceFile(nil), m.files...)
}

func (m *Model) Functions() []FunctionNode {
	return append([]FunctionNode(nil), m.functions...)
}

func (m *Model) DependsOn() []DependsOnEdge {
	return append([]DependsOnEdge(nil), m.dependsOn...)
}

func (m *Model) Contains() []ContainsEdge {
	return append([]ContainsEdge(nil), m.contains...)
}

func (m *Model) Calls() []CallsEdge {
	return append([]CallsEdge(nil), m.calls...)
}

func (m *Model) Skipped() []SkippedFile {
	return append([]SkippedFile(nil), m.skipped...)
}

func (m *Model) Stats() Stats {
	return Stats{
		Files:     len(m.files),
		Functions: len(m.functions),
		DependsOn: len(m.dependsOn),
		Contains:  len(m.contains),
		Calls:     len(m.calls),
		Skipped:   len(m.skipped),

		CallSites:  m.callSites,
		Unresolved: m.unresolved,
	}
}
