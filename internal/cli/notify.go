package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/eedraws/internal/notify"
	"github.com/rickgao/eedraws/internal/report"
)

// NotifyOptions holds flags for the notify command.
type NotifyOptions struct {
	DryRun bool
}

// NotifyResult is the JSON payload of the notify command.
type NotifyResult struct {
	New     int             `json:"new"`
	Sent    bool            `json:"sent"`
	Subject string          `json:"subject,omitempty"`
	Latest  *report.Summary `json:"latest,omitempty"`
}

// NewNotifyCommand creates the notify command.
func NewNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NotifyOptions{}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Update and email a summary when new draws are published",
		Long: `Check the published rounds. When new draws exist, update the dataset and
email a summary of the latest draw to the configured recipients.

Meant to be run from a scheduler. Without new draws nothing is written or sent.
SMTP settings come from the notify section of the config or the SMTP_SERVER,
SMTP_PORT, SMTP_USER, SMTP_PASSWORD, SMTP_FROM_EMAIL and SMTP_TO_EMAIL
environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.fail(cmd, runNotify(rootOpts, opts, cmd))
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the email instead of updating and sending")

	return cmd
}

func runNotify(rootOpts *RootOptions, opts *NotifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := rootOpts.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !opts.DryRun {
		if err := a.cfg.Notify.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "notify config", err)
		}
	}

	st, err := a.updater.Check(ctx)
	if err != nil {
		return err
	}
	f := rootOpts.formatter(cmd)
	if !st.HasNew() {
		rootOpts.Logger.Info("no new draws", "draws", st.Local)
		return f.Success(NotifyResult{}, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, "No new draws.")
			return err
		})
	}

	newDraws := st.NewDraws()
	draws := st.Merged()
	if !opts.DryRun {
		if _, err := a.updater.Apply(ctx, st); err != nil {
			return err
		}
	}

	summary, err := report.Latest(draws, rootOpts.deps.Now())
	if err != nil {
		return err
	}
	subject := notify.Subject(summary)
	res := NotifyResult{New: len(newDraws), Subject: subject, Latest: &summary}

	if opts.DryRun {
		body, err := notify.Body(summary, newDraws)
		if err != nil {
			return err
		}
		return f.Success(res, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Subject: %s\n\n%s", subject, body)
			return err
		})
	}

	mailOpts := []notify.Option{
		notify.WithLogger(rootOpts.Logger),
		notify.WithClock(rootOpts.deps.Now),
	}
	if rootOpts.deps.SendMail != nil {
		mailOpts = append(mailOpts, notify.WithSendFunc(rootOpts.deps.SendMail))
	}
	mailer := notify.NewMailer(a.cfg.Notify, mailOpts...)
	if err := mailer.NotifyDraws(summary, newDraws); err != nil {
		return WrapExitError(ExitCommandError, "send notification", err)
	}
	res.Sent = true

	return f.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Sent %q to %d recipient(s).\n", subject, len(a.cfg.Notify.To))
		return err
	})
}
