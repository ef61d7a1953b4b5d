// Package cli is the scanconfirm command tree: the API server and a few
// operator tools for confirmation tokens.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/raysh454/scanconfirm/internal/config"
)

type rootOptions struct {
	envFiles []string
}

// NewRootCmd builds the command tree. Configuration is read from the
// environment (and optional env files) when a subcommand runs.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "scanconfirm",
		Short:         "Email-confirmed scan requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load before the environment (default .env)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTokenCmd(opts))
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.envFiles...)
}
