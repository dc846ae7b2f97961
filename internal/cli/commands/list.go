package commands

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/store"
)

// ListOptions holds command-line options for the list command.
type ListOptions struct {
	Output string
}

// NewListCommand creates the list command.
func NewListCommand(globals *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts",
		Long:  "List the transcripts in the store, most recently updated first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, globals, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runList(cmd *cobra.Command, globals *GlobalOptions, opts *ListOptions) error {
	ctx := commandContext(cmd)

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	st, err := globals.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	summaries, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("listing transcripts: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.Output == "json" {
		if summaries == nil {
			summaries = []store.Summary{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No transcripts stored.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %9s  %7s  %-16s  %s\n", "ID", "MESSAGES", "NOTICES", "UPDATED", "SOURCE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-36s  %9s  %7s  %-16s  %s\n",
			s.ID,
			humanize.Comma(int64(s.Messages)),
			humanize.Comma(int64(s.Notices)),
			ansi.Truncate(humanize.Time(s.UpdatedAt), 16, "…"),
			s.Source)
	}
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "%d transcript(s)\n", len(summaries))

	return nil
}
