// Package cli provides the command-line interface for wareader.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/internal/cli/commands"
	"github.com/ccollicutt/wareader/internal/cli/plugins"
	"github.com/ccollicutt/wareader/pkg/config"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder := plugins.DefaultFinder()
	rootCmd := NewRootCommand(finder)

	// Check if the first argument might be a plugin command
	potentialCommand := ""
	if len(os.Args) > 1 && len(os.Args[1]) > 0 && os.Args[1][0] != '-' {
		potentialCommand = os.Args[1]
	}

	if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
		if pluginPath, err := finder.Find(potentialCommand); err == nil {
			return plugins.Execute(ctx, pluginPath, os.Args[2:], pluginEnv(ctx))
		}
		// Plugin not found - will fall through to Cobra which will show error
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if potentialCommand != "" && !isBuiltinCommand(rootCmd, potentialCommand) {
			_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
			return 2
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// pluginEnv hands plugins the config file and the resolved store path.
func pluginEnv(ctx context.Context) []string {
	configPath := os.Getenv(config.EnvConfig)
	dbPath := ""
	if cfg, err := config.LoadOrDefault(ctx, configPath); err == nil {
		dbPath = cfg.Store.Path
	}
	return plugins.Environ(configPath, dbPath)
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand(finder *plugins.Finder) *cobra.Command {
	globals := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "wareader",
		Short: "Read exported chat logs",
		Long: `wareader turns exported chat-log text files into ordered transcripts.

It understands the four export header families (modern, legacy, bracketed,
regional), system notices and multi-line messages, and can:
  - print transcripts as text, JSON or Markdown
  - browse them in a terminal viewer
  - keep them in a SQLite store, re-importing on change
  - serve them over HTTP

A configuration file is optional; pass one with --config or $WAREADER_CONFIG.

PLUGINS:
  wareader supports plugins for extended functionality. Plugins are standalone
  binaries named wareader-<command> that are automatically discovered and invoked.
  Run 'wareader plugins' to see the installed ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return commands.SetupLogging(cmd.ErrOrStderr(), globals.LogLevel, globals.LogFormat)
		},
	}

	globals.AddFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(commands.NewParseCommand(globals))
	rootCmd.AddCommand(commands.NewViewCommand(globals))
	rootCmd.AddCommand(commands.NewDetectCommand(globals))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(globals))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewImportCommand(globals))
	rootCmd.AddCommand(commands.NewListCommand(globals))
	rootCmd.AddCommand(commands.NewDeleteCommand(globals))
	rootCmd.AddCommand(commands.NewServeCommand(globals))
	rootCmd.AddCommand(commands.NewWatchCommand(globals))
	rootCmd.AddCommand(commands.NewPluginsCommand(finder))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
