package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a wareader configuration file without parsing anything.

Checks:
  - YAML syntax
  - Field values (output format, palette colours, listen address, limits)
  - Webhook URLs and triggers
  - Store directory existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	self := cfg.Self
	if self == "" {
		self = "(none)"
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Output:         %s\n", cfg.Output)
	fmt.Fprintf(w, "  Self:           %s\n", self)
	fmt.Fprintf(w, "  Store:          %s\n", cfg.Store.Path)
	fmt.Fprintf(w, "  Listen:         %s\n", cfg.Server.Listen)
	fmt.Fprintf(w, "  Upload limit:   %s\n", humanize.IBytes(uint64(cfg.Server.MaxBodyBytes)))
	fmt.Fprintf(w, "  Watch every:    %s\n", cfg.Watch.Every)
	fmt.Fprintf(w, "  Palette:        %d colour(s)\n", len(cfg.Colors()))
	fmt.Fprintf(w, "  System phrases: %d built-in, %d custom\n", len(parser.DefaultSystemPhrases), len(cfg.SystemPhrases))
	fmt.Fprintf(w, "  Webhooks:       %d\n", len(cfg.Webhooks))

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
		}
	}

	// Check the store directory exists (warning only)
	dir := filepath.Dir(cfg.Store.Path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fmt.Fprintf(w, "\nWarning: store directory does not exist: %s\n", dir)
	}

	return nil
}
