package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robotomize/corpsuite/internal/journal"
	"github.com/robotomize/corpsuite/internal/mailer"
	"github.com/robotomize/corpsuite/internal/report"
	"github.com/robotomize/corpsuite/internal/summary"
)

var (
	gmailFlag     bool
	journalFlag   string
	suiteNameFlag string
)

func init() {
	sendReportCmd.Flags().BoolVarP(
		&gmailFlag,
		"gmail",
		"g",
		false,
		"send through smtp.gmail.com:587 with STARTTLS",
	)
	sendReportCmd.Flags().StringVarP(
		&journalFlag,
		"journal",
		"j",
		"",
		"run journal to summarize, defaults to journal.file",
	)
	sendReportCmd.Flags().StringVarP(
		&suiteNameFlag,
		"name",
		"",
		"",
		"suite name used in the subject",
	)

	rootCmd.AddCommand(sendReportCmd)
}

var sendReportCmd = &cobra.Command{
	Use:          "send-report",
	Long:         "Mail the latest HTML report with a summary rebuilt from the run journal",
	Short:        "mail the latest report",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pth := journalFlag
		if pth == "" {
			pth = cfg.Dirs.Journal
		}

		set, err := journal.Load(ctx, workspace, workspace.Path(pth))
		if err != nil {
			return fmt.Errorf("journal Load: %w", err)
		}

		if set.Err != nil {
			logger.Warnf("Skipped unreadable journal lines: %v", set.Err)
		}

		email := cfg.Email
		if gmailFlag {
			email = mailer.Gmail(email)
		}

		name := suiteNameFlag
		if name == "" {
			name = cfg.Heading + " Suite"
		}

		summarizer := summary.New(
			mailer.NewSMTP(email, mailer.WithLogger(logger)),
			workspace,
			cfg.Heading,
			summary.WithLogger(logger),
			summary.WithReport(workspace.Path(cfg.Dirs.Report), report.FilePattern),
		)

		if err := summarizer.Send(ctx, name, set.Book.Records()); err != nil {
			if errors.Is(err, mailer.ErrDisabled) {
				logger.Infof("Email sending disabled, set email.enabled=true to send the report")
				return nil
			}

			return fmt.Errorf("summary Send: %w", err)
		}

		logger.Donef("Test report email sent for suite %s", name)

		return nil
	},
}
