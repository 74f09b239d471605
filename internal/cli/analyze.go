package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/eedraws/internal/analysis"
	"github.com/rickgao/eedraws/internal/report"
	"github.com/rickgao/eedraws/internal/store"
)

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	Stats            analysis.Stats `json:"stats"`
	MostCommonHour   *string        `json:"most_common_hour"`
	DrawsWithTimes   int            `json:"draws_with_times"`
	AnalysisFile     string         `json:"analysis_file"`
	TimeAnalysisFile string         `json:"time_analysis_file"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute draw statistics and the time-of-day distribution",
		Long: `Compute statistics over the local dataset and write them as JSON:

  analysis file       invitation and CRS min/avg/max and coefficient of variation
  time analysis file  hour-of-day histogram and timeline of draw times (UTC)

The dataset is not fetched or modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(cmd, runAnalyze(rootOpts, cmd))
		},
	}
}

func runAnalyze(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	draws, err := store.NewCSV(cfg.Data.CSVPath()).Load()
	if err != nil {
		return err
	}
	if len(draws) == 0 {
		return report.ErrEmptyDataset
	}

	now := opts.deps.Now()
	stats := analysis.ComputeStats(draws, now)
	times := analysis.AnalyzeTimes(draws, now)

	if err := store.WriteJSON(cfg.Data.AnalysisPath(), stats); err != nil {
		return err
	}
	if err := store.WriteJSON(cfg.Data.TimeAnalysisPath(), times); err != nil {
		return err
	}
	opts.Logger.Info("analysis written",
		"draws", stats.Draws.Total,
		"with_times", times.TotalDrawsWithTimes,
	)

	res := AnalyzeResult{
		Stats:            stats,
		MostCommonHour:   times.MostCommonHour,
		DrawsWithTimes:   times.TotalDrawsWithTimes,
		AnalysisFile:     cfg.Data.AnalysisPath(),
		TimeAnalysisFile: cfg.Data.TimeAnalysisPath(),
	}
	return opts.formatter(cmd).Success(res, func(w io.Writer) error {
		return renderAnalysis(w, res)
	})
}

func renderAnalysis(w io.Writer, res AnalyzeResult) error {
	p := message.NewPrinter(language.English)
	s := res.Stats

	p.Fprintf(w, "Draws analyzed: %d (%s to %s)\n", s.Draws.Total, s.DrawDate.Earliest, s.DrawDate.Latest)
	writeAggregate(p, w, "Invitations", s.Size)
	writeAggregate(p, w, "Minimum CRS", s.Score)
	if res.MostCommonHour != nil {
		p.Fprintf(w, "Most common draw time: %s UTC (%d draws with times)\n", *res.MostCommonHour, res.DrawsWithTimes)
	}
	fmt.Fprintf(w, "Wrote %s and %s\n", res.AnalysisFile, res.TimeAnalysisFile)
	return nil
}

func writeAggregate(p *message.Printer, w io.Writer, label string, a *analysis.Aggregate) {
	if a == nil {
		fmt.Fprintf(w, "%-13s N/A\n", label+":")
		return
	}
	p.Fprintf(w, "%-13s low %d, average %.2f, high %d, variation %.2f%%\n",
		label+":", a.Lowest, a.Average, a.Highest, a.CoefficientOfVariation)
}
