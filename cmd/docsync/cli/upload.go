package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petfolio/docsync/internal/services"
)

func newUploadCommand(o *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents",
		Long:  "Uploads one or more files to the remote store, keeping a local cached copy. When the remote store is unreachable the files are kept locally and re-uploading is up to the caller.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			reqs := make([]services.UploadRequest, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				fi, err := f.Stat()
				if err != nil {
					return err
				}

				req := services.UploadRequest{
					Owner:    o.owner,
					Scope:    o.scope,
					Category: category,
					Name:     filepath.Base(path),
					MimeType: detectMimeType(path),
					Size:     fi.Size(),
					Content:  f,
				}
				if len(args) == 1 {
					req.Progress = func(pct int) {
						fmt.Fprintf(cmd.ErrOrStderr(), "\rencoding %s: %3d%%", req.Name, pct)
						if pct == 100 {
							fmt.Fprintln(cmd.ErrOrStderr())
						}
					}
				}
				reqs = append(reqs, req)
			}

			ctx, cancel := a.opCtx(cmd.Context())
			defer cancel()

			items, warnings, err := a.svc.UploadFiles(ctx, reqs)
			printWarnings(cmd, warnings)
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\t%s\t%d bytes\t%s\n",
					item.ID, item.Name, item.Size, item.Origin)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "document category (e.g. vaccination, passport)")
	return cmd
}

// detectMimeType maps the file extension to a content type, stripping any
// charset parameter the mime package appends.
func detectMimeType(path string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
