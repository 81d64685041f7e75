package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robotomize/corpsuite/internal/inbox"
)

var (
	otpKeywordFlag  string
	otpPatternFlag  string
	otpRetriesFlag  uint
	otpIntervalFlag time.Duration
)

func init() {
	otpCmd.Flags().StringVarP(
		&otpKeywordFlag,
		"keyword",
		"k",
		"OTP",
		"text the mail subject must contain",
	)
	otpCmd.Flags().StringVarP(
		&otpPatternFlag,
		"pattern",
		"",
		inbox.DefaultOTPPattern,
		"regular expression matching the code",
	)
	otpCmd.Flags().UintVarP(
		&otpRetriesFlag,
		"retries",
		"r",
		0,
		"extra mailbox polls while no code has arrived",
	)
	otpCmd.Flags().DurationVarP(
		&otpIntervalFlag,
		"interval",
		"",
		5*time.Second,
		"wait between mailbox polls",
	)

	rootCmd.AddCommand(otpCmd)
}

var otpCmd = &cobra.Command{
	Use:          "otp",
	Long:         "Print the one-time password from the latest unread matching mail",
	Short:        "read an otp from the mailbox",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := inbox.New(cfg.IMAP, inbox.WithLogger(logger))

		code, err := fetcher.WaitOTP(cmd.Context(), otpKeywordFlag, otpPatternFlag, otpRetriesFlag, otpIntervalFlag)
		if err != nil {
			return fmt.Errorf("inbox WaitOTP: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), code)

		return err
	},
}
