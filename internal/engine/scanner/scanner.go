// # internal/engine/scanner/scanner.go
package scanner

import (
	"context"
	"depgraph/internal/core/errors"
	"depgraph/internal/engine/graph"
	"depgraph/internal/shared/util"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

type Options struct {
	Extensions   []string // default .py
	ExcludeDirs  []string // globs matched against directory base names
	ExcludeFiles []string // globs matched against file base names
}

type Result struct {
	Root        string // absolute, cleaned
	Files       []graph.SourceFile
	Index       *graph.ModuleIndex
	SkippedDirs []string // relative paths of directories that could not be read
}

// AbsPath returns the on-disk location of a scanned file.
func (r *Result) AbsPath(f graph.SourceFile) string {
	return filepath.Join(r.Root, filepath.FromSlash(f.Path))
}

// Matcher decides which paths under a root take part in a scan.
type Matcher struct {
	extensions   map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func NewMatcher(opts Options) (*Matcher, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".py"}
	}
	dirGlobs, err := util.CompileGlobs("exclude dir", opts.ExcludeDirs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile scan excludes")
	}
	fileGlobs, err := util.CompileGlobs("exclude file", opts.ExcludeFiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile scan excludes")
	}
	return &Matcher{
		extensions:   util.NormalizeExtensions(exts),
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
	}, nil
}

// SkipDir reports whether a directory with this base name is excluded.
func (m *Matcher) SkipDir(name string) bool {
	return util.MatchAny(m.excludeDirs, name)
}

// MatchFile reports whether a file with this base name is a source file to analyse.
func (m *Matcher) MatchFile(name string) bool {
	if !m.extensions[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	return !util.MatchAny(m.excludeFiles, name)
}

// ValidateRoot resolves root to an absolute directory path. Any failure is CodeInvalidRoot.
func ValidateRoot(root string) (string, error) {
	if root == "" {
		return "", errors.New(errors.CodeInvalidRoot, "root path is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "resolve root path"), errors.CtxPath, root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "root path is not accessible"), errors.CtxPath, root)
	}
	if !info.IsDir() {
		return "", errors.AddContext(errors.New(errors.CodeInvalidRoot, "root path is not a directory"), errors.CtxPath, root)
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "root directory is not readable"), errors.CtxPath, root)
	}
	_ = f.Close()
	return filepath.Clean(abs), nil
}

// Scan validates root and walks it, collecting source files sorted by relative path.
// Unreadable subdirectories are logged and skipped; only an invalid root is fatal.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	abs, err := ValidateRoot(root)
	if err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: abs}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(abs, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if path == abs {
				return errors.Wrap(walkErr, errors.CodeInvalidRoot, "read root directory")
			}
			slog.Warn("skipping unreadable path", "path", rel, "error", walkErr)
			if d != nil && d.IsDir() {
				res.SkippedDirs = append(res.SkippedDirs, rel)
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != abs && matcher.SkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !matcher.MatchFile(d.Name()) {
			return nil
		}
		res.Files = append(res.Files, graph.NewSourceFile(rel))
		return nil
	})
	if err != nil {
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}

	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})
	res.Index = graph.NewModuleIndex(res.Files)
	slog.Debug("scan complete", "root", abs, "files", len(res.Files), "modules", res.Index.Len())
	return res, nil
}
