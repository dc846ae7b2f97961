package commands

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/parser"
	"github.com/ccollicutt/wareader/pkg/store"
)

// ImportOptions holds command-line options for the import command.
type ImportOptions struct {
	Replace bool
	Jobs    int
}

// NewImportCommand creates the import command.
func NewImportCommand(globals *GlobalOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file|glob|dir>...",
		Short: "Parse exports and save them in the transcript store",
		Long: `Parse chat exports and save each transcript in the SQLite store.

By default every import gets a new random ID. With --replace the ID is derived
from the file's absolute path, so importing the same export again replaces the
stored copy in a single transaction.

Prints one line per transcript: ID, message count and source.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, globals, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Use a stable per-file ID and replace earlier imports")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Files parsed concurrently")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, globals *GlobalOptions, opts *ImportOptions) error {
	ctx := commandContext(cmd)

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	files, err := parser.ExpandExports(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	p := parser.New(parser.WithSystemPhrases(cfg.Phrases()))
	parsed, err := parseAll(ctx, p, files, opts.Jobs)
	if err != nil {
		return err
	}

	st, err := globals.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	w := cmd.OutOrStdout()
	for _, pe := range parsed {
		t := pe.transcript

		var id string
		if opts.Replace {
			id = store.IDForPath(t.Source)
			err = st.Put(ctx, id, t)
		} else {
			id, err = st.Save(ctx, t)
		}
		if err != nil {
			return fmt.Errorf("saving %s: %w", t.Source, err)
		}

		slog.Info("Imported transcript", "id", id, "source", t.Source, "records", len(t.Records))
		fmt.Fprintf(w, "%s  %s message(s)  %s\n", id, humanize.Comma(int64(t.UserMessages())), t.Source)
	}

	return nil
}
