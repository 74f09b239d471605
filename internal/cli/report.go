package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/eedraws/internal/model"
	"github.com/rickgao/eedraws/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	NoCheck bool
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the most recent draw",
		Long: `Show the most recent draw in the local dataset and how many days ago it
happened.

Unless --no-check is given, the published rounds are checked first. When
newer draws exist you are asked whether to update before reporting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(cmd, runReport(rootOpts, opts, cmd))
		},
	}

	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "report from local data without checking for new draws")

	return cmd
}

func runReport(rootOpts *RootOptions, opts *ReportOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := rootOpts.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	confirm := rootOpts.confirmer(cmd)
	offered := false

	draws, err := a.store.Load()
	if err != nil {
		return err
	}

	if !opts.NoCheck {
		draws, offered, err = checkFreshness(ctx, a, confirm, draws)
		if err != nil {
			return err
		}
	}

	today := rootOpts.deps.Now()
	summary, err := report.Latest(draws, today)
	if errors.Is(err, report.ErrEmptyDataset) && !offered {
		ok, cerr := confirm.Confirm("No draw data found. Fetch the draw history now?")
		if cerr != nil {
			return cerr
		}
		if ok {
			out, rerr := a.updater.Run(ctx)
			if rerr != nil {
				return rerr
			}
			summary, err = report.Latest(out.Draws, today)
		}
	}
	if err != nil {
		return err
	}

	return rootOpts.formatter(cmd).Success(summary, func(w io.Writer) error {
		return report.Render(w, summary)
	})
}

// checkFreshness compares the dataset with the feed and, if newer draws
// exist, offers to update. It returns the draws to report from and whether
// the user was asked. A failed check is logged and the local draws are used,
// unless there are none.
func checkFreshness(ctx context.Context, a *app, confirm Confirmer, draws []model.Draw) ([]model.Draw, bool, error) {
	st, err := a.updater.Check(ctx)
	if err != nil {
		if len(draws) == 0 {
			return nil, false, err
		}
		a.logger.Warn("could not check for new draws", "error", err)
		return draws, false, nil
	}
	if !st.HasNew() {
		return draws, false, nil
	}

	prompt := fmt.Sprintf("%d new draw(s) published since the last update. Update now?", st.New)
	if len(draws) == 0 {
		prompt = fmt.Sprintf("No draw data found. Fetch %d published draws now?", st.New)
	}
	ok, err := confirm.Confirm(prompt)
	if err != nil {
		return nil, true, err
	}
	if !ok {
		return draws, true, nil
	}

	out, err := a.updater.Apply(ctx, st)
	if err != nil {
		return nil, true, err
	}
	return out.Draws, true, nil
}
