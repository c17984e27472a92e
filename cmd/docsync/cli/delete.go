package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petfolio/docsync/internal/models"
)

func newDeleteCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete documents",
		Long:  "Removes documents from both tiers. Remote failures are reported as warnings; a remote copy that could not be removed reappears on the next list.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.opCtx(cmd.Context())
			defer cancel()

			items := make([]*models.Item, 0, len(args))
			for _, id := range args {
				item, err := a.svc.GetFile(ctx, o.owner, o.scope, id)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", id, err)
				}
				items = append(items, item)
			}

			warnings := a.svc.DeleteFiles(ctx, items)
			printWarnings(cmd, warnings)
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\t%s\n", item.ID, item.Name)
			}
			return nil
		},
	}
	return cmd
}
