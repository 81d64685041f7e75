package listener

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/outcome"
	"github.com/robotomize/corpsuite/internal/retry"
)

const (
	screenshotName     = "Test Failure Screenshot"
	screenshotMime     = "image/png"
	screenshotTSFormat = "20060102_150405"
)

// Journal receives every event applied to a record.
type Journal interface {
	Append(e outcome.Event) error
}

// Shooter captures the current browser viewport as PNG.
type Shooter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

type Verdict int

const (
	VerdictRetry Verdict = iota + 1
	VerdictFailed
)

func (v Verdict) Terminal() bool {
	return v != VerdictRetry
}

func (v Verdict) String() string {
	switch v {
	case VerdictRetry:
		return "retry"
	case VerdictFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Option func(*Listener)

func WithJournal(j Journal) Option {
	return func(l *Listener) {
		l.journal = j
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Listener) {
		if now != nil {
			l.now = now
		}
	}
}

// WithScreenshots stores failure screenshots under dir.
func WithScreenshots(fsys afero.Fs, dir string) Option {
	return func(l *Listener) {
		l.fs = fsys
		l.shotDir = dir
	}
}

// Listener bridges the runner lifecycle to outcome records.
type Listener struct {
	book    *outcome.Book
	retries *retry.Coordinator
	journal Journal
	logger  logging.Logger
	now     func() time.Time
	fs      afero.Fs
	shotDir string
}

func New(book *outcome.Book, retries *retry.Coordinator, opts ...Option) *Listener {
	l := Listener{
		book:    book,
		retries: retries,
		logger:  logging.Discard(),
		now:     time.Now,
	}

	for _, o := range opts {
		o(&l)
	}

	return &l
}

func (l *Listener) OnStart(key outcome.Key, description string) *outcome.Record {
	rec := l.book.Open(key, description)
	l.emit(rec, outcome.Event{Action: outcome.ActionStart, Output: rec.Description})
	l.logger.Infof("Test started: %s", key)

	return rec
}

func (l *Listener) OnSuccess(rec *outcome.Record) {
	l.emit(rec, outcome.Event{Action: outcome.ActionPass})

	if rec.Retries > 0 {
		l.logger.Donef("Test passed after %d retry attempts: %s", rec.Retries, rec.Key)
		return
	}

	l.logger.Donef("Test passed: %s", rec.Key)
}

// OnFailure decides between another attempt and a terminal failure. Only a
// terminal failure captures a screenshot; capture problems are logged.
func (l *Listener) OnFailure(ctx context.Context, rec *outcome.Record, err error, shooter Shooter) Verdict {
	detail := ""
	if err != nil {
		detail = err.Error()
	}

	decision := l.retries.Decide(rec.Key)
	if decision.Retry {
		l.emit(rec, outcome.Event{Action: outcome.ActionRetry, Attempt: decision.Attempt, Output: detail})
		l.logger.Warnf(
			"Test failed but will be retried: %s (attempt %d of %d): %s",
			rec.Key, decision.Attempt, l.retries.MaxAttempts(), detail,
		)

		return VerdictRetry
	}

	l.capture(ctx, rec, shooter)
	l.emit(rec, outcome.Event{Action: outcome.ActionFail, Output: detail})

	if rec.Retries > 0 {
		l.logger.Errorf("Test failed after all retry attempts: %s: %s", rec.Key, detail)
	} else {
		l.logger.Errorf("Test failed: %s: %s", rec.Key, detail)
	}

	return VerdictFailed
}

func (l *Listener) OnSkip(rec *outcome.Record, reason string) {
	l.emit(rec, outcome.Event{Action: outcome.ActionSkip, Output: reason})
	l.logger.Infof("Test skipped: %s %s", rec.Key, reason)
}

// Logf adds a free-text line to the record.
func (l *Listener) Logf(rec *outcome.Record, format string, args ...any) {
	l.emit(rec, outcome.Event{Action: outcome.ActionLog, Output: fmt.Sprintf(format, args...)})
}

func (l *Listener) capture(ctx context.Context, rec *outcome.Record, shooter Shooter) {
	if shooter == nil {
		return
	}

	body, err := shooter.Screenshot(ctx)
	if err != nil {
		l.logger.Errorf("Screenshot capture failed for %s: %v", rec.Key, err)
		return
	}

	pth, err := l.saveScreenshot(rec.Key, body)
	if err != nil {
		l.logger.Errorf("Screenshot save failed for %s: %v", rec.Key, err)
		return
	}

	l.emit(rec, outcome.Event{
		Action:     outcome.ActionAttach,
		Attachment: &outcome.Attachment{Name: screenshotName, Mime: screenshotMime, Path: pth},
	})
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func (l *Listener) saveScreenshot(key outcome.Key, body []byte) (string, error) {
	if l.fs == nil {
		return "", fmt.Errorf("screenshot directory not configured")
	}

	if err := l.fs.MkdirAll(l.shotDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("fs.MkdirAll: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", unsafeFileChars.ReplaceAllString(key.Method, "_"), l.now().Format(screenshotTSFormat))
	pth := filepath.Join(l.shotDir, name)
	if err := afero.WriteFile(l.fs, pth, body, 0o644); err != nil {
		return "", fmt.Errorf("afero.WriteFile: %w", err)
	}

	return pth, nil
}

func (l *Listener) emit(rec *outcome.Record, e outcome.Event) {
	e.Time = l.now()
	e.Class = rec.Key.Class
	e.Method = rec.Key.Method

	l.book.Apply(rec, e)

	if l.journal == nil {
		return
	}

	if err := l.journal.Append(e); err != nil {
		l.logger.Warnf("Journal append failed for %s: %v", rec.Key, err)
	}
}
