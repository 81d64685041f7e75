package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/robotomize/corpsuite/internal/allure"
	"github.com/robotomize/corpsuite/internal/browser"
	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/exporter"
	"github.com/robotomize/corpsuite/internal/fs"
	"github.com/robotomize/corpsuite/internal/journal"
	"github.com/robotomize/corpsuite/internal/listener"
	"github.com/robotomize/corpsuite/internal/mailer"
	"github.com/robotomize/corpsuite/internal/outcome"
	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/report"
	"github.com/robotomize/corpsuite/internal/retry"
	"github.com/robotomize/corpsuite/internal/scenarios"
	"github.com/robotomize/corpsuite/internal/sheet"
	"github.com/robotomize/corpsuite/internal/slice"
	"github.com/robotomize/corpsuite/internal/suite"
	"github.com/robotomize/corpsuite/internal/summary"
)

var (
	suiteFlag             string
	parallelClassesFlag   int
	forwardExitCode       bool
	installFlag           bool
	noMailFlag            bool
	allureTagsFlag        string
	allureLabelsFlag      string
	allureAttachmentForce bool
	listFlag              bool
)

func init() {
	runCmd.Flags().StringVarP(
		&suiteFlag,
		"suite",
		"f",
		"",
		"suite file selecting classes and methods: -f suite.yaml",
	)
	runCmd.Flags().IntVarP(
		&parallelClassesFlag,
		"parallel-classes",
		"n",
		0,
		"number of classes run at once, each with its own browser",
	)
	runCmd.Flags().BoolVarP(
		&forwardExitCode,
		"forward-exit",
		"e",
		false,
		"exit with code 1 when a test failed",
	)
	runCmd.Flags().BoolVarP(
		&installFlag,
		"install",
		"i",
		false,
		"download the playwright driver and Chromium before the run",
	)
	runCmd.Flags().BoolVarP(
		&noMailFlag,
		"no-mail",
		"",
		false,
		"do not mail the report after the run",
	)
	runCmd.Flags().StringVarP(
		&allureTagsFlag,
		"allure-tags",
		"",
		"",
		"add allure tags to all tests: --allure-tags SMOKE,REGRESSION",
	)
	runCmd.Flags().StringVarP(
		&allureLabelsFlag,
		"allure-labels",
		"",
		"",
		"add allure custom labels to all tests: --allure-labels key:value,key:value1",
	)
	runCmd.Flags().BoolVarP(
		&allureAttachmentForce,
		"attachment-force",
		"a",
		false,
		"attach the step log of passed tests too",
	)
	runCmd.Flags().BoolVarP(
		&listFlag,
		"list",
		"",
		false,
		"print the planned methods and exit",
	)

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:          "run",
	Long:         "Run the suite against the portal, write the reports and mail the summary",
	Short:        "run the suite",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		def, err := loadDefinition()
		if err != nil {
			return err
		}

		if def.Portal != "" && !strings.EqualFold(def.Portal, string(cfg.Portal)) {
			return fmt.Errorf("suite %q targets portal %s, not %s", def.Name, def.Portal, cfg.Portal)
		}

		name := def.Name
		if name == "" {
			name = cfg.Heading + " Suite"
		}

		pageOpts := []pages.Option{pages.WithLogger(logger)}

		cases, err := suite.Plan(def, scenarios.Catalogue(cfg.Portal, pageOpts...))
		if err != nil {
			return fmt.Errorf("suite Plan: %w", err)
		}

		if listFlag {
			for _, c := range cases {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Key(), c.Description)
			}
			return nil
		}

		if installFlag {
			logger.Infof("Installing playwright driver and Chromium")
			if err := browser.Install(); err != nil {
				return err
			}
		}

		res, err := runSuite(ctx, name, def, cases, pageOpts)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		s := res.Summary
		logger.Infof(
			"Suite %s finished in %s: %d total, %d passed, %d failed, %d skipped",
			name, s.Duration(), s.Total, s.Passed, s.Failed, s.Skipped,
		)

		if noMailFlag {
			logger.Infof("Email sending disabled by flag, skipping report email")
		} else {
			summarizer := summary.New(
				mailer.NewSMTP(cfg.Email, mailer.WithLogger(logger)),
				workspace,
				cfg.Heading,
				summary.WithLogger(logger),
				summary.WithReport(workspace.Path(cfg.Dirs.Report), report.FilePattern),
			)
			summarizer.Dispatch(context.WithoutCancel(ctx), name, res.Records)
		}

		if err != nil {
			return err
		}

		if forwardExitCode && res.Failed() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "One or more tests failed. exiting with error 1\n")
			os.Exit(1)
		}

		return nil
	},
}

// runSuite wires the listener, report sinks and browser launcher and runs
// cases. The journal is closed before it returns.
func runSuite(ctx context.Context, name string, def suite.Definition, cases []suite.Case, pageOpts []pages.Option) (suite.Result, error) {
	book := outcome.NewBook()

	events, err := journal.Create(workspace, workspace.Path(cfg.Dirs.Journal))
	if err != nil {
		return suite.Result{}, fmt.Errorf("journal Create: %w", err)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warnf("Failed to close run journal: %v", err)
		}
	}()

	l := listener.New(
		book,
		retry.New(retry.NewState(), retry.WithMaxAttempts(cfg.Retry.Max)),
		listener.WithJournal(events),
		listener.WithLogger(logger),
		listener.WithScreenshots(workspace, workspace.Path(cfg.Dirs.Screenshot)),
	)

	htmlReport := report.New(
		workspace,
		workspace.Path(cfg.Dirs.Report),
		report.HostInfo(cfg.Heading, cfg.Application(), cfg.Environment),
	)
	logger.Infof("Run %s writes its report to %s", htmlReport.RunID(), htmlReport.Path())

	exportOpts := []exporter.Option{
		exporter.WithSuite(name),
		exporter.WithAllureLabels(processAllureLabels()...),
	}
	if allureAttachmentForce {
		exportOpts = append(exportOpts, exporter.WithForceAttachment())
	}

	allureSink := exporter.NewSink(
		exporter.New(workspace, exportOpts...),
		exporter.NewWriter(workspace, exporter.WriteToDir(workspace.Path(cfg.Dirs.Allure))),
	)

	parallel := def.ParallelClasses
	if parallelClassesFlag > 0 {
		parallel = parallelClassesFlag
	}

	launcher := scenarios.NewLauncher(
		cfg,
		scenarios.WithLogger(logger),
		scenarios.WithPageOptions(pageOpts...),
	)

	runner := suite.NewRunner(
		l,
		book,
		launcher.Open,
		suite.WithLogger(logger),
		suite.WithParallelClasses(parallel),
		suite.WithSinks(htmlReport, allureSink),
		suite.WithParams(suite.Chain(testData(workspace, cfg), cfg)),
	)

	logger.Infof("Running %d methods of %d classes", len(cases), len(scenarios.Classes(cases)))

	return runner.Run(ctx, cases)
}

func loadDefinition() (suite.Definition, error) {
	pth := suiteFlag
	if pth == "" {
		pth = cfg.SuiteFile
	}

	full := workspace.Path(pth)

	ok, err := afero.Exists(workspace, full)
	if err != nil {
		return suite.Definition{}, fmt.Errorf("afero.Exists: %w", err)
	}

	if !ok {
		if suiteFlag != "" {
			return suite.Definition{}, fmt.Errorf("suite file %s not found", pth)
		}
		logger.Infof("No suite file at %s, running the whole %s catalogue", pth, cfg.Heading)
		return suite.Definition{}, nil
	}

	return suite.Load(workspace, full)
}

// testData reads scenario inputs from the first sheet of the test data
// workbook, a Key column and a Value column. A missing workbook yields no
// inputs.
func testData(ws fs.FS, cfg *config.Config) suite.Params {
	if cfg.TestData == "" {
		return nil
	}

	rows, err := sheet.ReadFirstSheet(ws, ws.Path(cfg.TestData))
	if err != nil {
		logger.Warnf("Test data not loaded from %s: %v", cfg.TestData, err)
		return nil
	}

	params := make(suite.MapParams, len(rows))
	for _, row := range rows {
		if key := strings.TrimSpace(row["Key"]); key != "" {
			params[key] = row["Value"]
		}
	}

	logger.Debugf("Loaded %d test data values from %s", len(params), cfg.TestData)

	return params
}

func processAllureLabels() []allure.Label {
	labels := []allure.Label{{Name: "epic", Value: cfg.Application()}}

	filterEmptyStrFn := func(v string) bool {
		return len(v) > 0
	}

	filterCustomLabelsStrFn := func(v string) bool {
		tokens := strings.Split(v, ":")
		return len(tokens) == 2 && len(tokens[0]) > 0 && len(tokens[1]) > 0
	}

	mapLabelsStrFn := func(t string) allure.Label {
		tokens := strings.Split(t, ":")

		return allure.Label{
			Name:  strings.TrimSpace(tokens[0]),
			Value: strings.TrimSpace(tokens[1]),
		}
	}

	if len(allureTagsFlag) > 0 {
		labels = append(
			labels, slice.Map(
				slice.Filter(
					strings.Split(allureTagsFlag, ","), filterEmptyStrFn,
				), func(t string) allure.Label {
					return allure.Label{Name: "tag", Value: strings.TrimSpace(t)}
				},
			)...,
		)
	}

	if len(allureLabelsFlag) > 0 {
		labels = append(
			labels, slice.Map(
				slice.Filter(
					slice.Filter(
						strings.Split(allureLabelsFlag, ","), filterEmptyStrFn,
					), filterCustomLabelsStrFn,
				), mapLabelsStrFn,
			)...,
		)
	}

	return labels
}
