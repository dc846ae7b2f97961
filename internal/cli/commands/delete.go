package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transcript-id>...",
		Short: "Delete stored transcripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			cfg, err := globals.LoadConfig(ctx)
			if err != nil {
				return err
			}

			st, err := globals.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			var errs []error
			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
}
