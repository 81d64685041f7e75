package exporter

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/allure"
	"github.com/robotomize/corpsuite/internal/outcome"
	"github.com/robotomize/corpsuite/internal/slice"
)

var hostname string

func init() {
	hostname, _ = os.Hostname()
}

type Attachment struct {
	Name   string
	Mime   string
	Source string
	Body   []byte
}

// Report is the Allure rendition of a run. Err collects attachments that
// could not be read; the tests are still exported.
type Report struct {
	Err         error
	Attachments []Attachment
	Tests       []allure.Test
}

type Option func(options *Options)

type Options struct {
	forceAttachment bool
	suite           string
	allureLabels    []allure.Label
}

// WithForceAttachment attaches the log of every test, not only failed ones.
func WithForceAttachment() Option {
	return func(c *Options) {
		c.forceAttachment = true
	}
}

func WithAllureLabels(labels ...allure.Label) Option {
	return func(options *Options) {
		options.allureLabels = labels
	}
}

func WithSuite(name string) Option {
	return func(options *Options) {
		options.suite = name
	}
}

type AllureExporter interface {
	Export(records []outcome.Record) (Report, error)
}

// New returns an exporter that reads screenshot files from fsys.
func New(fsys afero.Fs, opts ...Option) AllureExporter {
	e := exporter{fs: fsys}
	for _, o := range opts {
		o(&e.opts)
	}

	return &e
}

type exporter struct {
	opts Options
	fs   afero.Fs
}

func (e *exporter) Export(records []outcome.Record) (Report, error) {
	var (
		result Report
		errs   []error
	)

	hashFn := md5.New()

	hasher := func(b []byte) []byte {
		hashFn.Reset()
		hashFn.Write(b)

		return hashFn.Sum(nil)
	}

	for _, rec := range records {
		test := allure.Test{
			UUID:        uuid.New().String(),
			Name:        rec.Key.Method,
			FullName:    rec.Key.String(),
			Description: rec.Description,
			Status:      convertStatus(rec.Status),
			Stage:       allure.StageFinished,
			Steps:       make([]allure.Step, 0),
			Labels:      e.labels(rec),
			Parameters: []allure.Parameter{
				{Name: "retries", Value: strconv.Itoa(rec.Retries)},
			},
			Attachments: make([]allure.Attachment, 0),
			StatusDetails: allure.StatusDetails{
				Message: rec.Err,
				Flaky:   rec.Flaky(),
			},
		}

		testCaseID := hasher([]byte(test.FullName))
		historyID := hasher(testCaseID)
		test.TestCaseID = hex.EncodeToString(testCaseID)
		test.HistoryID = hex.EncodeToString(historyID)

		stop := rec.Stop
		if stop.Before(rec.Start) {
			stop = time.Now()
		}

		test.Start = rec.Start.UnixMilli()
		test.Stop = stop.UnixMilli()

		test.Steps = append(test.Steps, steps(rec)...)

		for _, a := range rec.Attachments {
			body, err := afero.ReadFile(e.fs, a.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("afero.ReadFile %s: %w", a.Path, err))
				continue
			}

			att := newAttachment(a.Name, a.Mime, filepath.Ext(a.Path), body)
			result.Attachments = append(result.Attachments, att)
			test.Attachments = append(test.Attachments, allure.Attachment{Name: att.Name, Source: att.Source, Type: att.Mime})
		}

		if e.opts.forceAttachment || rec.Status == outcome.StatusFailed {
			att := newAttachment(rec.Key.Method, "text/plain", ".txt", logBody(rec))
			result.Attachments = append(result.Attachments, att)
			test.Attachments = append(test.Attachments, allure.Attachment{Name: att.Name, Source: att.Source, Type: att.Mime})
		}

		result.Tests = append(result.Tests, test)
	}

	result.Err = errors.Join(errs...)

	return result, nil
}

func newAttachment(name, mime, ext string, body []byte) Attachment {
	return Attachment{
		Name:   name,
		Mime:   mime,
		Source: fmt.Sprintf("%s-attachment%s", uuid.New().String(), ext),
		Body:   body,
	}
}

func (e *exporter) labels(rec outcome.Record) []allure.Label {
	labels := []allure.Label{
		{Name: allure.LabelTestClass, Value: rec.Key.Class},
		{Name: allure.LabelTestMethod, Value: rec.Key.Method},
		{Name: allure.LabelLanguage, Value: "golang"},
		{Name: allure.LabelFramework, Value: "playwright"},
		{Name: allure.LabelHost, Value: hostname},
	}

	if e.opts.suite != "" {
		labels = append(labels,
			allure.Label{Name: allure.LabelParent, Value: e.opts.suite},
			allure.Label{Name: allure.LabelSuite, Value: rec.Key.Class},
		)
	}

	return append(labels, e.opts.allureLabels...)
}

// steps turns the free-text lines a scenario logged into Allure steps.
// Lifecycle lines written by the recorder are left out.
func steps(rec outcome.Record) []allure.Step {
	lines := slice.Filter(rec.Log, func(l outcome.LogLine) bool {
		return !isLifecycleLine(l.Message)
	})

	return slice.Map(lines, func(l outcome.LogLine) allure.Step {
		status := allure.StatusPass
		switch l.Level {
		case outcome.LevelFail:
			status = allure.StatusFail
		case outcome.LevelWarning:
			status = allure.StatusBroken
		case outcome.LevelSkip:
			status = allure.StatusSkip
		}

		return allure.Step{
			Name:        l.Message,
			Status:      status,
			Stage:       allure.StageFinished,
			Start:       l.Time.UnixMilli(),
			Stop:        l.Time.UnixMilli(),
			Steps:       make([]allure.Step, 0),
			Attachments: make([]allure.Attachment, 0),
			Parameters:  make([]allure.Parameter, 0),
		}
	})
}

var lifecyclePrefixes = []string{"Test Started:", "Test Passed", "Test Failed", "Test Skipped:", "Error:"}

func isLifecycleLine(msg string) bool {
	_, ok := slice.Find(lifecyclePrefixes, func(p string) bool {
		return strings.HasPrefix(msg, p)
	})

	return ok
}

func logBody(rec outcome.Record) []byte {
	var sb strings.Builder
	for _, l := range rec.Log {
		fmt.Fprintf(&sb, "%s [%s] %s\n", l.Time.Format(time.RFC3339), l.Level, l.Message)
	}

	return []byte(sb.String())
}

func convertStatus(status outcome.Status) string {
	switch status {
	case outcome.StatusPassed:
		return allure.StatusPass
	case outcome.StatusFailed:
		return allure.StatusFail
	case outcome.StatusSkipped:
		return allure.StatusSkip
	default:
		return allure.StatusBroken
	}
}
