package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/internal/tui"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// ViewOptions holds command-line options for the view command.
type ViewOptions struct {
	Self string
	ID   string
}

// NewViewCommand creates the view command.
func NewViewCommand(globals *GlobalOptions) *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view <file> | view --id <transcript-id>",
		Short: "Browse a chat transcript in the terminal",
		Long: `Open a scrollable transcript viewer.

The export is parsed in the background while a spinner shows progress. Messages
are grouped under date separators; outgoing messages sit on the right.

Keys:
  p / P   next / previous perspective
  /       search, n / N to jump between matches
  ?       help
  q       quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, globals, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Self, "self", "", "Initial perspective (overrides config self)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "Open a stored transcript instead of a file")

	return cmd
}

func runView(cmd *cobra.Command, args []string, globals *GlobalOptions, opts *ViewOptions) error {
	ctx := commandContext(cmd)

	if (len(args) == 0) == (opts.ID == "") {
		return errors.New("specify exactly one of <file> or --id")
	}

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	self := opts.Self
	if self == "" {
		self = cfg.Self
	}

	tuiOpts := tui.Options{
		Self:   self,
		Colors: cfg.Colors(),
	}

	if opts.ID != "" {
		st, err := globals.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		tuiOpts.Title = opts.ID
		tuiOpts.Load = func(ctx context.Context, _ func(int)) (*parser.Transcript, error) {
			return st.Load(ctx, opts.ID)
		}
	} else {
		file := args[0]
		tuiOpts.Title = filepath.Base(file)
		tuiOpts.Load = func(ctx context.Context, progress func(int)) (*parser.Transcript, error) {
			p := parser.New(
				parser.WithSystemPhrases(cfg.Phrases()),
				parser.WithProgress(progress),
			)
			return p.ParseFile(ctx, file)
		}
	}

	if err := tui.Run(ctx, tuiOpts); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
