package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/eedraws/internal/updater"
)

// UpdateResult is the JSON payload of the update command.
type UpdateResult struct {
	RunID       string `json:"run_id"`
	Fetched     int    `json:"fetched"`
	Added       int    `json:"added"`
	Skipped     int    `json:"skipped"`
	Total       int    `json:"total"`
	Dataset     string `json:"dataset"`
	Mirrored    bool   `json:"mirrored"`
	MirrorError string `json:"mirror_error,omitempty"`
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch published draws and append new ones to the dataset",
		Long: `Fetch the published Express Entry rounds and merge them into the local
dataset. Draws already stored are never modified. The dataset is rewritten
only when new draws were found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(cmd, runUpdate(rootOpts, cmd))
		},
	}
}

func runUpdate(opts *RootOptions, cmd *cobra.Command) error {
	a, err := opts.newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.updater.Run(cmd.Context())
	if err != nil {
		return err
	}
	return writeUpdateResult(opts.formatter(cmd), a.store.Path(), out)
}

func writeUpdateResult(f *OutputFormatter, dataset string, out *updater.Outcome) error {
	res := UpdateResult{
		RunID:    out.RunID.String(),
		Fetched:  out.Fetched,
		Added:    out.Added,
		Skipped:  out.Skipped,
		Total:    out.Total,
		Dataset:  dataset,
		Mirrored: out.Mirrored,
	}
	if out.MirrorErr != nil {
		res.MirrorError = out.MirrorErr.Error()
	}

	return f.Success(res, func(w io.Writer) error {
		if res.Added == 0 {
			fmt.Fprintf(w, "Dataset is up to date (%d draws).\n", res.Total)
		} else {
			fmt.Fprintf(w, "Added %d new draw(s); %s now holds %d draws.\n", res.Added, dataset, res.Total)
		}
		if res.Skipped > 0 {
			fmt.Fprintf(w, "Skipped %d malformed record(s).\n", res.Skipped)
		}
		if res.MirrorError != "" {
			fmt.Fprintf(w, "Database mirror failed: %s\n", res.MirrorError)
		}
		return nil
	})
}
