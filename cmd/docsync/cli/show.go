package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petfolio/docsync/internal/payload"
)

func newShowCommand(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one document",
		Long:  "Prints the metadata of one document; with --output the decoded content is written to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.opCtx(cmd.Context())
			defer cancel()

			item, err := a.svc.GetFile(ctx, o.owner, o.scope, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", item.ID)
			fmt.Fprintf(out, "scope:    %s\n", item.Scope)
			fmt.Fprintf(out, "name:     %s\n", item.Name)
			fmt.Fprintf(out, "category: %s\n", item.Category)
			fmt.Fprintf(out, "size:     %d bytes\n", item.Size)
			fmt.Fprintf(out, "type:     %s\n", item.MimeType)
			fmt.Fprintf(out, "checksum: %s\n", item.Checksum)
			fmt.Fprintf(out, "uploaded: %s\n", item.UploadedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "origin:   %s\n", item.Origin)

			if output == "" {
				return nil
			}
			if item.Payload == "" {
				return fmt.Errorf("no content available for %s: the cached copy holds metadata only and the remote store did not return the payload", item.ID)
			}
			data, _, err := payload.Decode(item.Payload)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o660); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d bytes to %s\n", len(data), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the decoded content to this file")
	return cmd
}
