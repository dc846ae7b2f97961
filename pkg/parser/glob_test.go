package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandExports_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "chat.txt")
	file := filepath.Join(dir, "chat.txt")

	result, err := ExpandExports([]string{file})
	if err != nil {
		t.Fatalf("ExpandExports() error = %v", err)
	}
	if len(result) != 1 || result[0] != file {
		t.Errorf("ExpandExports() = %v, want [%s]", result, file)
	}
}

func TestExpandExports_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt", "c.log")

	result, err := ExpandExports([]string{filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatalf("ExpandExports() error = %v", err)
	}
	if len(result) != 2 {
		t.Errorf("ExpandExports() returned %d files, want 2", len(result))
	}
}

func TestExpandExports_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.txt", "a.TXT", "notes.md")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := ExpandExports([]string{dir})
	if err != nil {
		t.Fatalf("ExpandExports() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.TXT"), filepath.Join(dir, "b.txt")}
	if len(result) != len(want) {
		t.Fatalf("ExpandExports() = %v, want %v", result, want)
	}
	for i := range want {
		if result[i] != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, result[i], want[i])
		}
	}
}

func TestExpandExports_NoMatch(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "*.nonexistent")

	result, err := ExpandExports([]string{pattern})
	if err != nil {
		t.Fatalf("ExpandExports() error = %v", err)
	}
	if len(result) != 1 || result[0] != pattern {
		t.Errorf("ExpandExports() = %v, want [%s]", result, pattern)
	}
}

func TestExpandExports_Deduplication(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "chat.txt")
	file := filepath.Join(dir, "chat.txt")

	result, err := ExpandExports([]string{file, dir, filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatalf("ExpandExports() error = %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ExpandExports() returned %d files, want 1 (deduplicated)", len(result))
	}
}

func TestExpandExports_InvalidPattern(t *testing.T) {
	if _, err := ExpandExports([]string{"[invalid"}); err == nil {
		t.Error("ExpandExports() expected error for invalid pattern")
	}
}

func TestIsExportFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"chat.txt", true},
		{"CHAT.TXT", true},
		{"chat.zip", false},
		{"chat", false},
	}
	for _, tt := range tests {
		if got := IsExportFile(tt.path); got != tt.want {
			t.Errorf("IsExportFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
