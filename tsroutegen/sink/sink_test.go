package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"simple", "routes.js", ""},
		{"nested", "gen/api/openapi.json", ""},
		{"dots in name", "file..js", ""},
		{"empty", "", "empty"},
		{"absolute", "/etc/passwd", "absolute paths not allowed"},
		{"windows drive", "C:/x.js", "absolute paths not allowed"},
		{"traversal", "a/../b.js", "path traversal not allowed"},
		{"leading traversal", "../b.js", "path traversal not allowed"},
		{"unclean", "a//b.js", "not clean"},
		{"dot prefix", "./a.js", "not clean"},
		{"trailing slash", "a/", "not clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePath(%q) error = %v", tt.path, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePath(%q) error = %v, want containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	err := s.WriteFiles(ctx, []File{
		{Path: "routes.js", Content: []byte("r")},
		{Path: "openapi.json", Content: []byte("{}")},
	})
	if err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	if got := string(s.Get("routes.js")); got != "r" {
		t.Errorf("Get(routes.js) = %q, want r", got)
	}
	if s.Get("missing.js") != nil {
		t.Error("Get(missing.js) != nil")
	}
	if got := s.Paths(); len(got) != 2 || got[0] != "openapi.json" || got[1] != "routes.js" {
		t.Errorf("Paths() = %v", got)
	}

	// The returned slice is a copy.
	b := s.Get("routes.js")
	b[0] = 'x'
	if got := string(s.Get("routes.js")); got != "r" {
		t.Errorf("Get() after external modification = %q, want r", got)
	}
}

func TestMemorySink_AllOrNothing(t *testing.T) {
	s := NewMemorySink()
	err := s.WriteFiles(context.Background(), []File{
		{Path: "ok.js", Content: []byte("x")},
		{Path: "../escape.js", Content: []byte("x")},
	})
	if err == nil {
		t.Fatal("WriteFiles() error = nil, want invalid path")
	}
	if len(s.Paths()) != 0 {
		t.Errorf("Paths() = %v, want none written", s.Paths())
	}
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := filepath.ToSlash(filepath.Join("gen", string(rune('a'+i))+".js"))
			if err := s.WriteFiles(context.Background(), []File{{Path: name, Content: []byte{byte(i)}}}); err != nil {
				t.Errorf("WriteFiles(%s) error = %v", name, err)
			}
		}()
	}
	wg.Wait()
	if got := len(s.Paths()); got != 20 {
		t.Errorf("len(Paths()) = %d, want 20", got)
	}
}

func TestFilesystemSink(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	err := s.WriteFiles(context.Background(), []File{
		{Path: "validators.js", Content: []byte("v")},
		{Path: "nested/openapi.json", Content: []byte("{}")},
	})
	if err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	for path, want := range map[string]string{"validators.js": "v", "nested/openapi.json": "{}"} {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	info, err := os.Stat(filepath.Join(root, "validators.js"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
	assertNoTempFiles(t, root)
}

func TestFilesystemSink_Overwrites(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	ctx := context.Background()
	for _, content := range []string{"one", "two"} {
		if err := s.WriteFiles(ctx, []File{{Path: "routes.js", Content: []byte(content)}}); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := os.ReadFile(filepath.Join(root, "routes.js"))
	if string(got) != "two" {
		t.Errorf("routes.js = %q, want two", got)
	}
}

func TestFilesystemSink_FailedStageWritesNothing(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "routes.js"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewFilesystemSink(root)
	err := s.WriteFiles(context.Background(), []File{
		{Path: "routes.js", Content: []byte("new")},
		{Path: "/abs.js", Content: []byte("x")},
	})
	if err == nil {
		t.Fatal("WriteFiles() error = nil, want invalid path")
	}
	got, _ := os.ReadFile(filepath.Join(root, "routes.js"))
	if string(got) != "old" {
		t.Errorf("routes.js = %q, want old (untouched)", got)
	}
	assertNoTempFiles(t, root)
}

func TestFilesystemSink_Canceled(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFilesystemSink(root).WriteFiles(ctx, []File{{Path: "a.js", Content: []byte("x")}})
	if err != context.Canceled {
		t.Errorf("WriteFiles() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.js")); !os.IsNotExist(err) {
		t.Error("a.js written despite canceled context")
	}
}

func TestFilesystemSink_ModeDefault(t *testing.T) {
	root := t.TempDir()
	s := &FilesystemSink{Root: root}
	if err := s.WriteFiles(context.Background(), []File{{Path: "a.js", Content: []byte("x")}}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(root, "a.js"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func assertNoTempFiles(t *testing.T, root string) {
	t.Helper()
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(info.Name(), ".tsroute-") {
			t.Errorf("leftover temp file %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
