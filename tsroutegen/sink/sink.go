// Package sink provides output destinations for generated artifacts.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is one generated artifact.
type File struct {
	// Path is relative to the sink root and uses / as separator.
	Path    string
	Content []byte
}

// OutputSink receives generated artifacts.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFiles writes every file or, as far as the destination allows,
	// none of them.
	WriteFiles(ctx context.Context, files []File) error
}

// FilesystemSink writes to a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode
}

// NewFilesystemSink creates a FilesystemSink writing under root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644}
}

type staged struct {
	temp, final string
}

// WriteFiles stages every file as a temp file next to its destination and
// renames them into place only once all of them were written. A failure
// while staging leaves existing artifacts untouched.
func (s *FilesystemSink) WriteFiles(ctx context.Context, files []File) error {
	var pending []staged
	cleanup := func() {
		for _, p := range pending {
			_ = os.Remove(p.temp)
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}
		st, err := s.stage(f)
		if err != nil {
			cleanup()
			return err
		}
		pending = append(pending, st)
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}
	for i, p := range pending {
		if err := os.Rename(p.temp, p.final); err != nil {
			// Earlier renames already landed; remove what is left.
			for _, rest := range pending[i:] {
				_ = os.Remove(rest.temp)
			}
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return nil
}

func (s *FilesystemSink) stage(f File) (staged, error) {
	if err := ValidatePath(f.Path); err != nil {
		return staged{}, fmt.Errorf("invalid path %q: %w", f.Path, err)
	}
	full, err := s.resolve(f.Path)
	if err != nil {
		return staged{}, err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return staged{}, fmt.Errorf("failed to create directories: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tsroute-*.tmp")
	if err != nil {
		return staged{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	_, writeErr := tmp.Write(f.Content)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return staged{}, fmt.Errorf("failed to write %s: %w", f.Path, err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		_ = os.Remove(tmp.Name())
		return staged{}, fmt.Errorf("failed to set file mode: %w", err)
	}
	return staged{temp: tmp.Name(), final: full}, nil
}

// resolve joins path to the root and rejects results outside of it.
func (s *FilesystemSink) resolve(path string) (string, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", path)
	}
	return full, nil
}

// MemorySink keeps generated artifacts in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFiles validates every path first and stores the files only if all are valid.
func (s *MemorySink) WriteFiles(ctx context.Context, files []File) error {
	for _, f := range files {
		if err := ValidatePath(f.Path); err != nil {
			return fmt.Errorf("invalid path %q: %w", f.Path, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range files {
		s.files[f.Path] = append([]byte(nil), f.Content...)
	}
	return nil
}

// Get returns a copy of one file, or nil if it was never written.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ValidatePath checks if a path is valid for output.
// Paths must be relative, use / as separator, be clean and
// not contain .. components.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	// Windows drive letters, even on Unix.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}
