package main

import (
	"github.com/spf13/cobra"

	"github.com/robotomize/corpsuite/internal/cleaner"
	"github.com/robotomize/corpsuite/internal/slice"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:          "clean",
	Long:         "Empty the report, screenshot and Allure directories",
	Short:        "remove previous reports",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := slice.Map(cfg.Dirs.All(), func(dir string) string {
			if dir == "" {
				return ""
			}
			return workspace.Path(dir)
		})

		n, err := cleaner.New(workspace, cleaner.WithLogger(logger)).Clean(cmd.Context(), dirs...)
		logger.Infof("Removed %d entries", n)

		return err
	},
}
