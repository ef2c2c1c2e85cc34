package sink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "fragment", path: "Shop.Catalog.Color.SmartEnum.g.cs"},
		{name: "nested", path: "gen/Shop/A_B_Color.SmartEnum.g.cs"},
		{name: "double dot inside a segment", path: "A..B.g.cs"},
		{name: "empty", path: "", wantErr: true, errMsg: "empty"},
		{name: "leading slash", path: "/abs/Color.g.cs", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/Color.g.cs", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "backslash", path: `gen\Color.g.cs`, wantErr: true, errMsg: "forward slashes"},
		{name: "traversal", path: "gen/../Color.g.cs", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "leading traversal", path: "../Color.g.cs", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "dot prefix", path: "./Color.g.cs", wantErr: true, errMsg: "not clean"},
		{name: "double slash", path: "gen//Color.g.cs", wantErr: true, errMsg: "not clean"},
		{name: "trailing slash", path: "gen/", wantErr: true, errMsg: "not clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and read", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("class A {}")
		if err := s.WriteFile(ctx, "A.g.cs", content); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		content[0] = 'X'
		if got := s.Get("A.g.cs"); string(got) != "class A {}" {
			t.Errorf("Get() = %q, stored content must not alias the caller's slice", got)
		}
		if got := s.Get("missing.g.cs"); got != nil {
			t.Errorf("Get(missing) = %q, want nil", got)
		}
	})

	t.Run("paths are sorted", func(t *testing.T) {
		s := NewMemorySink()
		for _, p := range []string{"b.g.cs", "a.g.cs", "c/a.g.cs"} {
			if err := s.WriteFile(ctx, p, nil); err != nil {
				t.Fatal(err)
			}
		}
		got := strings.Join(s.Paths(), ",")
		if got != "a.g.cs,b.g.cs,c/a.g.cs" {
			t.Errorf("Paths() = %s", got)
		}
		s.Reset()
		if len(s.Files()) != 0 {
			t.Errorf("Files() after Reset = %v", s.Files())
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		if err := NewMemorySink().WriteFile(ctx, "../x", nil); err == nil {
			t.Error("WriteFile(../x) succeeded")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := NewMemorySink().WriteFile(cctx, "a.g.cs", nil); err == nil {
			t.Error("WriteFile with cancelled context succeeded")
		}
	})

	t.Run("concurrent writes", func(t *testing.T) {
		s := NewMemorySink()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.WriteFile(ctx, fmt.Sprintf("f%02d.g.cs", i), []byte{byte(i)})
			}(i)
		}
		wg.Wait()
		if n := len(s.Files()); n != 20 {
			t.Errorf("len(Files()) = %d, want 20", n)
		}
	})
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("creates directories and writes", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		if err := s.WriteFile(ctx, "Shop/Color.SmartEnum.g.cs", []byte("x")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := os.ReadFile(filepath.Join(root, "Shop", "Color.SmartEnum.g.cs"))
		if err != nil || string(got) != "x" {
			t.Fatalf("ReadFile() = %q, %v", got, err)
		}
		entries, _ := os.ReadDir(filepath.Join(root, "Shop"))
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".smartgen-") {
				t.Errorf("temp file %s left behind", e.Name())
			}
		}
	})

	t.Run("unchanged content keeps mtime", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		path := filepath.Join(root, "A.g.cs")
		if err := s.WriteFile(ctx, "A.g.cs", []byte("same")); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}
		if err := s.WriteFile(ctx, "A.g.cs", []byte("same")); err != nil {
			t.Fatal(err)
		}
		info, _ := os.Stat(path)
		if !info.ModTime().Equal(old) {
			t.Errorf("unchanged file was rewritten")
		}
		if err := s.WriteFile(ctx, "A.g.cs", []byte("changed")); err != nil {
			t.Fatal(err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "changed" {
			t.Errorf("content = %q, want changed", got)
		}
	})

	t.Run("mode", func(t *testing.T) {
		root := t.TempDir()
		s := &FilesystemSink{Root: root, Mode: 0o600}
		if err := s.WriteFile(ctx, "A.g.cs", []byte("x")); err != nil {
			t.Fatal(err)
		}
		info, _ := os.Stat(filepath.Join(root, "A.g.cs"))
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("prune removes fragments not written", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		for _, p := range []string{"Old.SmartEnum.g.cs", "Keep.SmartEnum.g.cs", "notes.txt"} {
			if err := os.WriteFile(filepath.Join(root, p), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.WriteFile(ctx, "Keep.SmartEnum.g.cs", []byte("y")); err != nil {
			t.Fatal(err)
		}
		removed, err := s.Prune(".SmartEnum.g.cs")
		if err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		if strings.Join(removed, ",") != "Old.SmartEnum.g.cs" {
			t.Errorf("Prune() = %v", removed)
		}
		for _, p := range []string{"Keep.SmartEnum.g.cs", "notes.txt"} {
			if _, err := os.Stat(filepath.Join(root, p)); err != nil {
				t.Errorf("%s was removed", p)
			}
		}
	})

	t.Run("prune of missing root", func(t *testing.T) {
		s := NewFilesystemSink(filepath.Join(t.TempDir(), "missing"))
		removed, err := s.Prune(".g.cs")
		if err != nil || len(removed) != 0 {
			t.Errorf("Prune() = %v, %v", removed, err)
		}
	})
}

func TestTxtarSink(t *testing.T) {
	ctx := context.Background()
	s := NewTxtarSink("generated by smartgen")
	if err := s.WriteFile(ctx, "B.g.cs", []byte("class B {}\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(ctx, "A.g.cs", []byte("class A {}\n")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	want := "generated by smartgen\n-- A.g.cs --\nclass A {}\n-- B.g.cs --\nclass B {}\n"
	if buf.String() != want {
		t.Errorf("WriteTo() =\n%s\nwant\n%s", buf.String(), want)
	}

	path := filepath.Join(t.TempDir(), "out.txtar")
	if err := s.WriteArchive(path); err != nil {
		t.Fatal(err)
	}
	files, err := ReadArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || string(files["B.g.cs"]) != "class B {}\n" {
		t.Errorf("ReadArchive() = %v", files)
	}
}
