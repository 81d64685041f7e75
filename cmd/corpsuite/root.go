package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/fs"
	"github.com/robotomize/corpsuite/internal/logging"
)

var (
	verboseFlag bool
	configFlag  string
	portalFlag  string
	workdirFlag string
)

// Loaded by the root PersistentPreRunE for every subcommand except version.
var (
	cfg       *config.Config
	logger    logging.Logger
	workspace fs.FS
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verboseFlag,
		"verbose",
		"v",
		false,
		"verbose",
	)
	rootCmd.PersistentFlags().StringVarP(
		&portalFlag,
		"portal",
		"p",
		string(config.PortalCorpstack),
		"portal under test: --portal corpstack|hdfc",
	)
	rootCmd.PersistentFlags().StringVarP(
		&configFlag,
		"config",
		"c",
		"",
		"properties file, defaults to the portal's file: -c property/Corp_test_data.properties",
	)
	rootCmd.PersistentFlags().StringVarP(
		&workdirFlag,
		"workdir",
		"w",
		"",
		"directory relative paths resolve against, defaults to the current directory",
	)
}

var rootCmd = &cobra.Command{
	Use:          "corpsuite",
	Long:         "Browser acceptance tests for the Corpstack and HDFC portals",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}

		logger = logging.New(verboseFlag)

		portal, err := config.ParsePortal(portalFlag)
		if err != nil {
			return err
		}

		root := workdirFlag
		if root == "" {
			if root, err = os.Getwd(); err != nil {
				return fmt.Errorf("os.Getwd: %w", err)
			}
		}
		workspace = fs.New(root)

		pth := configFlag
		if pth == "" {
			pth = portal.PropertyFile()
		}

		if cfg, err = config.Load(workspace, workspace.Path(pth), portal); err != nil {
			return fmt.Errorf("config Load: %w", err)
		}

		logger.Debugf("Loaded %s configuration from %s", cfg.Heading, pth)

		return nil
	},
}
