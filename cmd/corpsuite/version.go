package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var (
	BuildName = "corpsuite"
	BuildTag  string
	BuildRev  string
)

var versionCmd = &cobra.Command{
	Use:          "version",
	Long:         "Print the corpsuite build: release tag, vcs revision and platform",
	Short:        "print version",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version())

		return err
	},
}

func init() {
	if info, available := debug.ReadBuildInfo(); available {
		if BuildTag == "" {
			BuildTag = info.Main.Version
		}

		if BuildRev == "" {
			BuildRev = revision(info.Settings)
		}
	}

	rootCmd.AddCommand(versionCmd)
}

// revision returns the short vcs revision, marked when the tree was dirty.
func revision(settings []debug.BuildSetting) string {
	var rev, modified string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}

	if len(rev) > 12 {
		rev = rev[:12]
	}

	if rev != "" && modified == "true" {
		rev += "-dirty"
	}

	return rev
}

func version() string {
	tag := strings.TrimPrefix(BuildTag, "v")
	if tag == "" {
		tag = "dev"
	}

	out := fmt.Sprintf("%s %s", BuildName, tag)
	if BuildRev != "" {
		out += " (" + BuildRev + ")"
	}

	return fmt.Sprintf("%s %s/%s %s", out, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
