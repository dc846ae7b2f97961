package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/parser"
	"github.com/ccollicutt/wareader/pkg/store"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	Every time.Duration
	Once  bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(globals *GlobalOptions) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-import exports into the store whenever they change",
		Long: `Check export files on a schedule and re-import each one whose size or
modification time changed since the last check.

Each file is stored under an ID derived from its absolute path, so the stored
transcript is replaced in place and readers never see a partial import.`,
		Example: `  wareader watch chat.txt
  wareader watch --every 5m exports/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, globals, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Every, "every", 0, "Check interval (overrides watch.every)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "Check once and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, globals *GlobalOptions, opts *WatchOptions) error {
	ctx := commandContext(cmd)

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	every := opts.Every
	if every <= 0 {
		every = cfg.Watch.Every
	}

	files, err := parser.ExpandExports(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	st, err := globals.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	w := newWatcher(st, parser.New(parser.WithSystemPhrases(cfg.Phrases())), files, cmd.OutOrStdout(), slog.Default())

	if opts.Once {
		return w.sync(ctx)
	}

	return w.run(ctx, every)
}

// fileState is what a file looked like when it was last imported.
type fileState struct {
	size    int64
	modTime time.Time
}

// watcher re-imports changed exports under stable IDs.
type watcher struct {
	store  store.Store
	parser *parser.Parser
	files  []string
	out    io.Writer
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]fileState
}

func newWatcher(st store.Store, p *parser.Parser, files []string, out io.Writer, logger *slog.Logger) *watcher {
	return &watcher{
		store:  st,
		parser: p,
		files:  files,
		out:    out,
		logger: logger.With("component", "watch"),
		seen:   make(map[string]fileState),
	}
}

// run checks the files every interval, starting immediately, until ctx is done.
func (w *watcher) run(ctx context.Context, every time.Duration) error {
	s, err := gocron.NewScheduler(gocron.WithLogger(w.logger))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if err := w.sync(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Re-import failed", "error", err)
			}
		}),
		gocron.WithName("reimport"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling re-import: %w", err)
	}

	w.logger.Info("Watching exports", "files", len(w.files), "every", every)
	s.Start()

	<-ctx.Done()

	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	return nil
}

// sync re-imports every file that changed since the previous call. A file
// that cannot be read is logged and retried on the next call.
func (w *watcher) sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, file := range w.files {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(file)
		if err != nil {
			w.logger.Warn("Cannot stat export", "file", file, "error", err)
			continue
		}

		state := fileState{size: info.Size(), modTime: info.ModTime()}
		if prev, ok := w.seen[file]; ok && prev.size == state.size && prev.modTime.Equal(state.modTime) {
			continue
		}

		t, err := w.parser.ParseFile(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("Cannot parse export", "file", file, "error", err)
			continue
		}

		id := store.IDForPath(file)
		if err := w.store.Put(ctx, id, t); err != nil {
			return fmt.Errorf("saving %s: %w", file, err)
		}
		w.seen[file] = state

		w.logger.Info("Re-imported export", "file", file, "id", id, "messages", t.UserMessages())
		fmt.Fprintf(w.out, "%s  %s  %d message(s)  %s\n",
			time.Now().Format(time.TimeOnly), id, t.UserMessages(), file)
	}

	return nil
}
