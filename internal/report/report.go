package report

import (
	"bytes"
	"context"
	"crypto/rand"
	_ "embed"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/robotomize/corpsuite/internal/outcome"
)

const (
	FilePrefix   = "TestReport_"
	FilePattern  = FilePrefix + "*.html"
	fileTSFormat = "2006-01-02_15-04-05"
)

//go:embed templates/report.html.pongo2
var reportTemplate []byte

var tpl = pongo2.Must(pongo2.FromBytes(reportTemplate))

// Info is the system information block of the report.
type Info struct {
	Heading     string
	Application string
	Environment string
	Browser     string
	OS          string
	GoVersion   string
	User        string
}

// HostInfo fills the machine dependent fields of Info.
func HostInfo(heading, application, environment string) Info {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		name = u.Username
	}

	return Info{
		Heading:     heading,
		Application: application,
		Environment: environment,
		Browser:     "Chromium",
		OS:          runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:   runtime.Version(),
		User:        name,
	}
}

type Option func(*Writer)

func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// Writer renders the HTML run report. The file name is fixed when the
// writer is created, so one run always produces one report.
type Writer struct {
	fs      afero.Fs
	dir     string
	info    Info
	now     func() time.Time
	started time.Time
	runID   ulid.ULID
}

func New(fsys afero.Fs, dir string, info Info, opts ...Option) *Writer {
	w := Writer{fs: fsys, dir: dir, info: info, now: time.Now}
	for _, o := range opts {
		o(&w)
	}

	w.started = w.now()
	w.runID = ulid.MustNew(ulid.Timestamp(w.started), rand.Reader)

	return &w
}

func (w *Writer) RunID() string {
	return w.runID.String()
}

// Path is where Flush writes the report.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, FilePrefix+w.started.Format(fileTSFormat)+".html")
}

// Flush renders records into the report file, replacing any earlier flush.
func (w *Writer) Flush(ctx context.Context, records []outcome.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	body, err := w.Render(records)
	if err != nil {
		return err
	}

	if err := w.fs.MkdirAll(w.dir, os.ModePerm); err != nil {
		return fmt.Errorf("fs.MkdirAll: %w", err)
	}

	if err := afero.WriteFile(w.fs, w.Path(), body, 0o644); err != nil {
		return fmt.Errorf("afero.WriteFile: %w", err)
	}

	return nil
}

func (w *Writer) Render(records []outcome.Record) ([]byte, error) {
	summary := outcome.Fold(records)

	tests := make([]testView, 0, len(records))
	for _, rec := range records {
		tests = append(tests, w.view(rec))
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context{
		"info":      w.info,
		"run_id":    w.runID.String(),
		"generated": w.now(),
		"duration":  summary.Duration(),
		"summary":   summary,
		"pass_rate": summary.PassRate(),
		"fail_rate": summary.FailRate(),
		"skip_rate": summary.SkipRate(),
		"tests":     tests,
	}, &buf); err != nil {
		return nil, fmt.Errorf("pongo2 Template.ExecuteWriter: %w", err)
	}

	return buf.Bytes(), nil
}

type testView struct {
	Key         string
	Class       string
	Method      string
	Description string
	Status      string
	Flaky       bool
	Retries     int
	Elapsed     string
	Log         []outcome.LogLine
	Screenshots []string
}

func (w *Writer) view(rec outcome.Record) testView {
	v := testView{
		Key:         rec.Key.String(),
		Class:       rec.Key.Class,
		Method:      rec.Key.Method,
		Description: rec.Description,
		Status:      string(rec.Status),
		Flaky:       rec.Flaky(),
		Retries:     rec.Retries,
		Elapsed:     rec.Elapsed().Round(time.Millisecond).String(),
		Log:         rec.Log,
	}

	for _, a := range rec.Attachments {
		if a.Mime != "image/png" {
			continue
		}

		v.Screenshots = append(v.Screenshots, w.relative(a.Path))
	}

	return v
}

// relative makes pth relative to the report directory so the report can be
// opened straight from disk.
func (w *Writer) relative(pth string) string {
	rel, err := filepath.Rel(w.dir, pth)
	if err != nil {
		return filepath.ToSlash(pth)
	}

	return filepath.ToSlash(rel)
}
