package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/eedraws/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(version.Get(), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "eedraws", version.String())
				return err
			})
		},
	}
}
