package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"depgraph/internal/core/errors"
)

type FunctionRecord struct {
	ID   string
	Name string
	Path string
	Line int
}

type Edge struct {
	From string
	To   string
}

// MemoryStore is an in-process Store with the same merge and endpoint rules as
// the persistent stores.
type MemoryStore struct {
	mu        sync.RWMutex
	files     map[string]string
	functions map[string]FunctionRecord
	dependsOn map[Edge]bool
	contains  map[Edge]bool
	calls     map[Edge]bool
	runs      []Run
	writes    int
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.files = make(map[string]string)
	s.functions = make(map[string]FunctionRecord)
	s.dependsOn = make(map[Edge]bool)
	s.contains = make(map[Edge]bool)
	s.calls = make(map[Edge]bool)
}

func (s *MemoryStore) UpsertFile(_ context.Context, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = name
	s.writes++
	return nil
}

func (s *MemoryStore) UpsertFunction(_ context.Context, id, name, path string, line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[id] = FunctionRecord{ID: id, Name: name, Path: path, Line: line}
	s.writes++
	return nil
}

func (s *MemoryStore) UpsertDependency(_ context.Context, fromPath, toPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFile(fromPath, toPath); err != nil {
		return err
	}
	s.dependsOn[Edge{From: fromPath, To: toPath}] = true
	s.writes++
	return nil
}

func (s *MemoryStore) UpsertContains(_ context.Context, filePath, functionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFile(filePath); err != nil {
		return err
	}
	if err := s.requireFunction(functionID); err != nil {
		return err
	}
	s.contains[Edge{From: filePath, To: functionID}] = true
	s.writes++
	return nil
}

func (s *MemoryStore) UpsertCalls(_ context.Context, callerID, calleeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFunction(callerID, calleeID); err != nil {
		return err
	}
	s.calls[Edge{From: callerID, To: calleeID}] = true
	s.writes++
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *MemoryStore) RecordRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) requireFile(paths ...string) error {
	for _, p := range paths {
		if _, ok := s.files[p]; !ok {
			return errors.AddContext(errors.New(errors.CodeNotFound, "file node must be upserted before its edges"), errors.CtxPath, p)
		}
	}
	return nil
}

func (s *MemoryStore) requireFunction(ids ...string) error {
	for _, id := range ids {
		if _, ok := s.functions[id]; !ok {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("function node %q must be upserted before its edges", id))
		}
	}
	return nil
}

// Files returns path -> name for every stored file.
func (s *MemoryStore) Files() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) Functions() []FunctionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FunctionRecord, 0, len(s.functions))
	for _, fn := range s.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) DependsOn() []Edge { return s.edges(func() map[Edge]bool { return s.dependsOn }) }
func (s *MemoryStore) Contains() []Edge  { return s.edges(func() map[Edge]bool { return s.contains }) }
func (s *MemoryStore) Calls() []Edge     { return s.edges(func() map[Edge]bool { return s.calls }) }

func (s *MemoryStore) Runs() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Run(nil), s.runs...)
}

// Writes counts accepted upserts, including repeats.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) edges(pick func() map[Edge]bool) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := pick()
	out := make([]Edge, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
