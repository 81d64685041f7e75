package summary

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/mailer"
	"github.com/robotomize/corpsuite/internal/outcome"
)

// ErrNoReport means the report directory holds no file matching the report
// pattern. Sending is aborted; the run itself is unaffected.
var ErrNoReport = errors.New("no test report found")

const subjectTSFormat = "2006-01-02 15:04"

//go:embed templates/email.html.pongo2
var emailTemplate []byte

var tpl = pongo2.Must(pongo2.FromBytes(emailTemplate))

// LatestReport returns the file in dir matching pattern with the newest
// modification time.
func LatestReport(fsys afero.Fs, dir, pattern string) (string, error) {
	matches, err := afero.Glob(fsys, filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("afero.Glob: %w", err)
	}

	var (
		latest  string
		modTime time.Time
	)

	for _, pth := range matches {
		info, err := fsys.Stat(pth)
		if err != nil || info.IsDir() {
			continue
		}

		if latest == "" || info.ModTime().After(modTime) {
			latest, modTime = pth, info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoReport, dir)
	}

	return latest, nil
}

func Subject(suite string, at time.Time) string {
	return fmt.Sprintf("[Test Report] %s - %s", suite, at.Format(subjectTSFormat))
}

type entry struct {
	Name    string
	Err     string
	Retries int
}

// RenderBody renders the HTML mail body for a folded run.
func RenderBody(heading, suite, reportName string, records []outcome.Record, at time.Time) (string, error) {
	s := outcome.Fold(records)

	var failed, flaky []entry
	for _, rec := range records {
		switch {
		case rec.Status == outcome.StatusFailed:
			failed = append(failed, entry{Name: rec.Key.String(), Err: rec.Err, Retries: rec.Retries})
		case rec.Flaky():
			flaky = append(flaky, entry{Name: rec.Key.String(), Retries: rec.Retries})
		}
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context{
		"heading":     heading,
		"suite":       suite,
		"report_name": reportName,
		"generated":   at,
		"duration":    s.Duration(),
		"summary":     s,
		"pass_rate":   s.PassRate(),
		"fail_rate":   s.FailRate(),
		"skip_rate":   s.SkipRate(),
		"failed":      failed,
		"flaky":       flaky,
	}, &buf); err != nil {
		return "", fmt.Errorf("pongo2 Template.ExecuteWriter: %w", err)
	}

	return buf.String(), nil
}

type Option func(*Summarizer)

func WithLogger(logger logging.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReport sets where the latest report is looked up.
func WithReport(dir, pattern string) Option {
	return func(s *Summarizer) {
		s.dir = dir
		s.pattern = pattern
	}
}

// Summarizer mails the suite summary with the latest HTML report attached.
type Summarizer struct {
	sender  mailer.Sender
	fs      afero.Fs
	heading string
	dir     string
	pattern string
	logger  logging.Logger
	now     func() time.Time
}

func New(sender mailer.Sender, fsys afero.Fs, heading string, opts ...Option) *Summarizer {
	s := Summarizer{
		sender:  sender,
		fs:      fsys,
		heading: heading,
		dir:     "test-output/reports",
		pattern: "TestReport_*.html",
		logger:  logging.Discard(),
		now:     time.Now,
	}

	for _, o := range opts {
		o(&s)
	}

	return &s
}

// Send builds and sends the summary mail for records.
func (s *Summarizer) Send(ctx context.Context, suite string, records []outcome.Record) error {
	pth, err := LatestReport(s.fs, s.dir, s.pattern)
	if err != nil {
		return err
	}

	s.logger.Infof("Latest test report found: %s", pth)

	report, err := afero.ReadFile(s.fs, pth)
	if err != nil {
		return fmt.Errorf("afero.ReadFile: %w", err)
	}

	now := s.now()
	name := filepath.Base(pth)

	body, err := RenderBody(s.heading, suite, name, records, now)
	if err != nil {
		return err
	}

	msg := mailer.Message{
		Subject: Subject(suite, now),
		HTML:    body,
		Attachments: []mailer.Attachment{
			{Filename: name, ContentType: "text/html", Body: report},
		},
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailer Send: %w", err)
	}

	return nil
}

// Dispatch sends the summary and logs the outcome. Errors never reach the
// caller, so a failed send cannot change the run result.
func (s *Summarizer) Dispatch(ctx context.Context, suite string, records []outcome.Record) {
	s.logger.Infof("Sending test report email for suite %s", suite)

	if err := s.Send(ctx, suite, records); err != nil {
		if errors.Is(err, mailer.ErrDisabled) {
			s.logger.Infof("Email sending disabled, skipping report email")
			return
		}

		s.logger.Errorf("Failed to send test report email: %v", err)
		return
	}

	s.logger.Donef("Test report email sent for suite %s", suite)
}
