package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"depgraph/internal/core/errors"
)

// CypherStore writes the graph as an idempotent Cypher script of MERGE
// statements, ready to be piped into cypher-shell. Statements already written
// by this store are not repeated.
type CypherStore struct {
	mu        sync.Mutex
	w         *bufio.Writer
	closer    io.Closer
	file      *os.File
	path      string
	seen      map[string]bool
	files     map[string]bool
	functions map[string]bool
}

func NewCypherStore(w io.Writer) *CypherStore {
	s := &CypherStore{w: bufio.NewWriter(w)}
	s.reset()
	return s
}

// CreateCypherScript creates or truncates the script at path, creating parent
// directories. The script always holds a single process's loads.
func CreateCypherScript(path string) (*CypherStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeStoreUnavailable, "cypher script path must not be empty")
	}
	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("create script directory %q", dir))
		}
	}
	f, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("open cypher script %q", cleanPath))
	}
	s := NewCypherStore(f)
	s.closer = f
	s.file = f
	s.path = cleanPath
	return s, nil
}

func (s *CypherStore) Path() string {
	return s.path
}

func (s *CypherStore) reset() {
	s.seen = make(map[string]bool)
	s.files = make(map[string]bool)
	s.functions = make(map[string]bool)
}

func (s *CypherStore) emit(stmt string) error {
	if s.seen[stmt] {
		return nil
	}
	if _, err := s.w.WriteString(stmt + "\n"); err != nil {
		return err
	}
	s.seen[stmt] = true
	return nil
}

func (s *CypherStore) UpsertFile(_ context.Context, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.emit(fmt.Sprintf("MERGE (f:File {path: %s}) SET f.name = %s;", quote(path), quote(name))); err != nil {
		return err
	}
	s.files[path] = true
	return nil
}

func (s *CypherStore) UpsertFunction(_ context.Context, id, name, path string, line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stmt := fmt.Sprintf("MERGE (fn:Function {id: %s}) SET fn.name = %s, fn.path = %s, fn.lineno = %d;",
		quote(id), quote(name), quote(path), line)
	if err := s.emit(stmt); err != nil {
		return err
	}
	s.functions[id] = true
	return nil
}

func (s *CypherStore) UpsertDependency(_ context.Context, fromPath, toPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFiles(fromPath, toPath); err != nil {
		return err
	}
	return s.emit(fmt.Sprintf("MATCH (a:File {path: %s}) MATCH (b:File {path: %s}) MERGE (a)-[:DEPENDS_ON]->(b);",
		quote(fromPath), quote(toPath)))
}

func (s *CypherStore) UpsertContains(_ context.Context, filePath, functionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFiles(filePath); err != nil {
		return err
	}
	if err := s.requireFunctions(functionID); err != nil {
		return err
	}
	return s.emit(fmt.Sprintf("MATCH (f:File {path: %s}) MATCH (fn:Function {id: %s}) MERGE (f)-[:CONTAINS]->(fn);",
		quote(filePath), quote(functionID)))
}

func (s *CypherStore) UpsertCalls(_ context.Context, callerID, calleeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireFunctions(callerID, calleeID); err != nil {
		return err
	}
	return s.emit(fmt.Sprintf("MATCH (c:Function {id: %s}) MATCH (d:Function {id: %s}) MERGE (c)-[:CALLS]->(d);",
		quote(callerID), quote(calleeID)))
}

// ClearAll starts the script over. A file-backed script is truncated so
// repeated watch reruns do not grow it.
func (s *CypherStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if s.file != nil {
		s.w.Reset(s.file)
		if err := s.file.Truncate(0); err != nil {
			return errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("truncate cypher script %q", s.path))
		}
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return errors.Wrap(err, errors.CodeStoreUnavailable, fmt.Sprintf("rewind cypher script %q", s.path))
		}
	}
	_, err := s.w.WriteString("MATCH (n) DETACH DELETE n;\n")
	return err
}

// Batch flushes the script once fn has written a whole load.
func (s *CypherStore) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *CypherStore) RecordRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "// run %s root=%s finished=%s files=%d functions=%d calls=%d skipped=%d\n",
		run.ID, run.Root, run.FinishedAt.UTC().Format(time.RFC3339),
		run.Stats.Files, run.Stats.Functions, run.Stats.Calls, run.Stats.Skipped)
	if err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *CypherStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
		s.file = nil
	}
	return err
}

func (s *CypherStore) requireFiles(paths ...string) error {
	for _, p := range paths {
		if !s.files[p] {
			return errors.AddContext(errors.New(errors.CodeNotFound, "file node must be upserted before its edges"), errors.CtxPath, p)
		}
	}
	return nil
}

func (s *CypherStore) requireFunctions(ids ...string) error {
	for _, id := range ids {
		if !s.functions[id] {
			return errors.New(errors.CodeNotFound, fmt.Sprintf("function node %q must be upserted before its edges", id))
		}
	}
	return nil
}

var cypherEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func quote(s string) string {
	return "'" + cypherEscaper.Replace(s) + "'"
}
