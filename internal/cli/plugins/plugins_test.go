package plugins

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlugin(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}
	return path
}

func TestFinder_Find_NotFound(t *testing.T) {
	f := &Finder{Dirs: []string{t.TempDir()}}
	_, err := f.Find("nonexistent-plugin-xyz")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFinder_Find_InDir(t *testing.T) {
	dir := t.TempDir()
	pluginPath := writePlugin(t, dir, "wareader-testplugin", "#!/bin/sh\necho test")

	found, err := (&Finder{Dirs: []string{dir}}).Find("testplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFinder_Find_FirstDirWins(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	want := writePlugin(t, first, "wareader-dup", "#!/bin/sh\n")
	writePlugin(t, second, "wareader-dup", "#!/bin/sh\n")

	found, err := (&Finder{Dirs: []string{first, second}}).Find("dup")
	if err != nil || found != want {
		t.Errorf("Find() = %q, %v; want %q", found, err, want)
	}
}

func TestFinder_Find_RejectsPaths(t *testing.T) {
	f := &Finder{Dirs: []string{t.TempDir()}}
	for _, cmd := range []string{"", "../evil", `a\b`} {
		if _, err := f.Find(cmd); !errors.Is(err, ErrPluginNotFound) {
			t.Errorf("Find(%q) error = %v, want ErrPluginNotFound", cmd, err)
		}
	}
}

func TestFinder_List(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writePlugin(t, first, "wareader-zeta", "#!/bin/sh\n")
	writePlugin(t, first, "wareader-alpha", "#!/bin/sh\n")
	writePlugin(t, second, "wareader-alpha", "#!/bin/sh\n")
	writePlugin(t, second, "other-tool", "#!/bin/sh\n")
	if err := os.WriteFile(filepath.Join(second, "wareader-noexec"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got := (&Finder{Dirs: []string{first, second}}).List()
	if len(got) != 2 {
		t.Fatalf("List() = %+v, want 2 plugins", got)
	}
	if got[0].Name != "alpha" || got[1].Name != "zeta" {
		t.Errorf("List() names = %s, %s", got[0].Name, got[1].Name)
	}
	if filepath.Dir(got[0].Path) != first {
		t.Errorf("alpha should come from the first directory, got %s", got[0].Path)
	}
}

func TestEnviron(t *testing.T) {
	env := Environ("cfg.yaml", "chats.db")
	joined := strings.Join(env, "\n")
	if !strings.Contains(joined, EnvConfig+"=cfg.yaml") || !strings.Contains(joined, EnvDB+"=chats.db") {
		t.Error("Environ() missing wareader variables")
	}

	for _, kv := range Environ("", "") {
		if strings.HasPrefix(kv, EnvConfig+"=") && os.Getenv(EnvConfig) == "" {
			t.Error("empty config path should not be exported")
		}
	}
}

func TestExecute_ExitCode(t *testing.T) {
	dir := t.TempDir()
	ok := writePlugin(t, dir, "wareader-ok", "#!/bin/sh\nexit 0\n")
	fail := writePlugin(t, dir, "wareader-fail", "#!/bin/sh\nexit 3\n")
	env := writePlugin(t, dir, "wareader-env", "#!/bin/sh\n[ \"$WAREADER_DB\" = \"x.db\" ] || exit 9\n")

	if code := Execute(context.Background(), ok, nil, os.Environ()); code != 0 {
		t.Errorf("Execute(ok) = %d, want 0", code)
	}
	if code := Execute(context.Background(), fail, nil, os.Environ()); code != 3 {
		t.Errorf("Execute(fail) = %d, want 3", code)
	}
	if code := Execute(context.Background(), env, nil, Environ("", "x.db")); code != 0 {
		t.Errorf("Execute(env) = %d, want 0", code)
	}
}

func TestFormatNotFoundError(t *testing.T) {
	err := FormatNotFoundError("unknown")

	if !strings.Contains(err, `"unknown"`) {
		t.Error("expected error to contain the command")
	}
	if !strings.Contains(err, "wareader-unknown") {
		t.Error("expected error to mention wareader-unknown")
	}
	if !strings.Contains(err, "~/.wareader/plugins/") {
		t.Error("expected error to mention the plugins directory")
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	exec := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(exec, []byte("test"), 0755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directories are not plugins")
	}
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
