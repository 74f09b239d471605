// Package cli implements the eedraws command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/eedraws/internal/notify"
	"github.com/rickgao/eedraws/internal/version"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
	Yes        bool   // Answer yes to every prompt

	Logger *slog.Logger
	deps   Deps
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Deps are the outside-world hooks commands use. Zero fields take defaults.
type Deps struct {
	Now       func() time.Time
	Confirmer Confirmer       // Defaults to a stdin prompt, or yes with --yes
	SendMail  notify.SendFunc // Defaults to smtp.SendMail
}

// NewRootCommand creates the root command for the eedraws CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithDeps(Deps{})
}

// NewRootCommandWithDeps creates the root command with injected hooks.
func NewRootCommandWithDeps(deps Deps) *cobra.Command {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   "eedraws",
		Short: "Track Express Entry invitation rounds",
		Long: `eedraws keeps a local copy of the Express Entry rounds published by IRCC.

update fetches the published rounds and appends draws not seen before.
report summarizes the latest draw, offering to update first when newer
draws are available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			opts.Logger.Debug("starting eedraws",
				"version", version.Version,
				"commit", version.Commit,
				"command", cmd.Name(),
			)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (defaults apply when empty)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Yes, "yes", "y", false, "answer yes to prompts")

	// Add subcommands
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// confirmer picks the prompt implementation for cmd.
func (o *RootOptions) confirmer(cmd *cobra.Command) Confirmer {
	switch {
	case o.Yes:
		return AutoConfirmer(true)
	case o.deps.Confirmer != nil:
		return o.deps.Confirmer
	default:
		return PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// fail writes err in JSON mode and returns it classified.
func (o *RootOptions) fail(cmd *cobra.Command, err error) error {
	err = classify(err)
	if err != nil {
		_ = o.formatter(cmd).Error(err)
	}
	return err
}
