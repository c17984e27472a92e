package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(o *options) *cobra.Command {
	var showUsage bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Long:  "Lists the merged view of the remote store and the local cache for the owner, optionally narrowed to one scope. When the remote store is unreachable the locally cached set is shown instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.opCtx(cmd.Context())
			defer cancel()

			items, warnings, err := a.svc.LoadFiles(ctx, o.owner, o.scope)
			printWarnings(cmd, warnings)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCOPE\tNAME\tCATEGORY\tSIZE\tUPLOADED\tORIGIN")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					item.ID, item.Scope, item.Name, item.Category, item.Size,
					item.UploadedAt.Format("2006-01-02 15:04:05"), item.Origin)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if showUsage {
				usage, err := a.svc.CacheUsage(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nlocal cache: %d items, %d of %d bytes used\n",
					usage.Items, usage.UsedBytes, usage.CapacityBytes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showUsage, "usage", false, "also report local cache usage")
	return cmd
}
