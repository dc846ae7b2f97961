package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/wareader/pkg/parser"
	"github.com/ccollicutt/wareader/pkg/store"
)

func newTestWatcher(t *testing.T, files ...string) (*watcher, *store.SQLite, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "watch.db"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newWatcher(st, parser.New(), files, &out, logger), st, &out
}

func TestWatcher_SyncImportsOnce(t *testing.T) {
	ctx := context.Background()
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)
	w, st, out := newTestWatcher(t, export)

	if err := w.sync(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	id := store.IDForPath(export)
	if !strings.Contains(out.String(), id) || !strings.Contains(out.String(), "3 message(s)") {
		t.Errorf("first sync output = %q", out.String())
	}

	loaded, err := st.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.UserMessages() != 3 {
		t.Errorf("stored %d messages, want 3", loaded.UserMessages())
	}

	out.Reset()
	if err := w.sync(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unchanged file re-imported: %q", out.String())
	}
}

func TestWatcher_SyncReimportsChangedFile(t *testing.T) {
	ctx := context.Background()
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)
	w, st, out := newTestWatcher(t, export)

	if err := w.sync(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	grown := sampleExport + "9/10/22, 10:40 AM - Bob: Still there?\n"
	if err := os.WriteFile(export, []byte(grown), 0644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(export, later, later); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := w.sync(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if !strings.Contains(out.String(), "4 message(s)") {
		t.Errorf("changed file not re-imported: %q", out.String())
	}

	summaries, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("stored %d transcripts, want 1", len(summaries))
	}
	if summaries[0].ID != store.IDForPath(export) || summaries[0].Messages != 4 {
		t.Errorf("summary = %+v", summaries[0])
	}
}

func TestWatcher_SyncSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	export := writeExport(t, dir, "chat.txt", sampleExport)
	w, st, _ := newTestWatcher(t, filepath.Join(dir, "missing.txt"), export)

	if err := w.sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	summaries, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("stored %d transcripts, want 1", len(summaries))
	}
}

func TestWatcher_SyncCancelled(t *testing.T) {
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)
	w, _, out := newTestWatcher(t, export)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.sync(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
	if out.Len() != 0 {
		t.Errorf("cancelled sync wrote output: %q", out.String())
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)
	w, st, _ := newTestWatcher(t, export)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, time.Hour) }()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := st.Load(context.Background(), store.IDForPath(export)); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	if _, err := st.Load(context.Background(), store.IDForPath(export)); err != nil {
		t.Errorf("export was not imported on start: %v", err)
	}
}

func TestRunWatch_Once(t *testing.T) {
	globals := testGlobals(t)
	export := writeExport(t, t.TempDir(), "chat.txt", sampleExport)

	cmd := NewWatchCommand(globals)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--once", export})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("watch --once failed: %v", err)
	}
	if !strings.Contains(out.String(), store.IDForPath(export)) {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(globals.DBPath); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
