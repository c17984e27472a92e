package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petfolio/docsync/internal/models"
	"github.com/petfolio/docsync/internal/services"
)

func newReplaceCommand(o *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "replace <id> <file>",
		Short: "Replace a document",
		Long:  "Uploads a new version of a document under a fresh id and removes the superseded one. The two steps are not atomic; if the removal fails both versions stay visible until a later delete succeeds.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.opCtx(cmd.Context())
			defer cancel()

			old, err := a.svc.GetFile(ctx, o.owner, o.scope, args[0])
			if err != nil {
				return fmt.Errorf("resolving %s: %w", args[0], err)
			}

			path := args[1]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			fi, err := f.Stat()
			if err != nil {
				return err
			}
			if category == "" {
				category = old.Category
			}

			req := services.UploadRequest{
				Owner:    o.owner,
				Scope:    old.Scope,
				Category: category,
				Name:     filepath.Base(path),
				MimeType: detectMimeType(path),
				Size:     fi.Size(),
				Content:  f,
			}

			items, warnings, err := a.svc.ReUploadFiles(ctx, []*models.Item{old}, []services.UploadRequest{req})
			printWarnings(cmd, warnings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replaced %s with %s (%s)\n", old.ID, items[0].ID, items[0].Origin)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "override the document category (defaults to the old one)")
	return cmd
}
