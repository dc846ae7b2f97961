package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/internal/cli/plugins"
)

// NewPluginsCommand creates the plugins command.
func NewPluginsCommand(finder *plugins.Finder) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List installed plugins",
		Long: `List the wareader-<command> binaries that can be run as wareader <command>.

Plugin locations (searched in order):
  1. Same directory as the wareader binary
  2. ~/.wareader/plugins/
  3. Anywhere in PATH`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			found := finder.List()
			if len(found) == 0 {
				fmt.Fprintln(w, "No plugins found.")
				return
			}
			for _, p := range found {
				fmt.Fprintf(w, "%-16s %s\n", p.Name, p.Path)
			}
		},
	}
}
