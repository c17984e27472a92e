// Package cli implements the docsync command tree. Every subcommand builds
// the two-tier stack lazily in its RunE so flag parsing and help output stay
// free of side effects.
package cli

import (
	"github.com/spf13/cobra"
)

// options carries the persistent flag values shared by all subcommands.
type options struct {
	configPath string
	owner      string
	scope      string
	token      string
	backend    string
}

func NewRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "docsync",
		Short:         "Two-tier document store for pet travel paperwork",
		Long:          "docsync keeps pet travel documents in a remote store with a capacity-bounded local cache, staying usable while the remote side is unreachable.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (JSON); defaults apply when omitted")
	cmd.PersistentFlags().StringVar(&o.owner, "owner", "", "owner the documents belong to")
	cmd.PersistentFlags().StringVar(&o.scope, "scope", "", "scope (pet profile) to operate on")
	cmd.PersistentFlags().StringVar(&o.token, "token", "", "bearer token for the document-db backend")
	cmd.PersistentFlags().StringVar(&o.backend, "backend", "", "remote backend override: s3 or docdb")

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newUploadCommand(o))
	cmd.AddCommand(newListCommand(o))
	cmd.AddCommand(newShowCommand(o))
	cmd.AddCommand(newDeleteCommand(o))
	cmd.AddCommand(newReplaceCommand(o))

	return cmd
}
