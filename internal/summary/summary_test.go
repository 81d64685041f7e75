package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/mailer"
	"github.com/robotomize/corpsuite/internal/outcome"
)

type fakeSender struct {
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, msg)

	return nil
}

func reportFS(t *testing.T, files map[string]time.Time) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for name, mod := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte("<html>"+name+"</html>"), 0o644))
		require.NoError(t, fsys.Chtimes(name, mod, mod))
	}

	return fsys
}

func TestLatestReport(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		files    map[string]time.Time
		expected string
		err      error
	}{
		{
			name: "test_newest_mod_time_wins",
			files: map[string]time.Time{
				"reports/TestReport_2024-03-01_09-00-00.html": base.Add(2 * time.Hour),
				"reports/TestReport_2024-03-01_11-00-00.html": base,
				"reports/notes.html":                          base.Add(5 * time.Hour),
			},
			expected: "reports/TestReport_2024-03-01_09-00-00.html",
		},
		{
			name:  "test_empty_dir",
			files: map[string]time.Time{"reports/readme.txt": base},
			err:   ErrNoReport,
		},
		{
			name:  "test_missing_dir",
			files: map[string]time.Time{},
			err:   ErrNoReport,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := LatestReport(reportFS(t, tc.files), "reports", "TestReport_*.html")
			if !errors.Is(err, tc.err) {
				t.Fatalf("got: %v, want: %v", err, tc.err)
			}

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func scenarioRecords() []outcome.Record {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	book := outcome.NewBook()

	add := func(method string, retries int, final string, stopAfter time.Duration) {
		rec := book.Open(outcome.Key{Class: "CardsTest", Method: method}, "")
		book.Apply(rec, outcome.Event{Time: start, Action: outcome.ActionStart})
		for i := 1; i <= retries; i++ {
			book.Apply(rec, outcome.Event{Time: start, Action: outcome.ActionRetry, Attempt: i, Output: "x"})
		}
		book.Apply(rec, outcome.Event{Time: start.Add(stopAfter), Action: final, Output: "element not clickable"})
	}

	add("A", 0, outcome.ActionPass, time.Minute)
	add("B", 1, outcome.ActionPass, 2*time.Minute)
	add("C", 2, outcome.ActionFail, 1*time.Hour+2*time.Minute+3*time.Second)

	return book.Records()
}

func TestRenderBody(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 11, 5, 0, 0, time.UTC)
	body, err := RenderBody("Corpstack", "Regression", "TestReport_x.html", scenarioRecords(), at)
	require.NoError(t, err)

	for _, want := range []string{
		"Suite: Regression | Generated: 2024-03-01 11:05:00",
		"<strong>Duration:</strong> 01:02:03",
		"<strong>Total Tests:</strong> 3",
		"66.7%",
		"33.3%",
		"0.0%",
		"CardsTest.C</strong>: element not clickable",
		"CardsTest.B (1 retry)",
		"Corpstack Automation Framework",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}

	if diff := cmp.Diff("[Test Report] Regression - 2024-03-01 11:05", Subject("Regression", at)); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestSummarizer_Send(t *testing.T) {
	t.Parallel()

	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	fsys := reportFS(t, map[string]time.Time{"test-output/reports/TestReport_2024-03-01_10-00-00.html": mod})
	sender := &fakeSender{}

	s := New(sender, fsys, "HDFC", WithClock(func() time.Time { return mod }))
	require.NoError(t, s.Send(context.Background(), "Smoke", scenarioRecords()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	require.Equal(t, "[Test Report] Smoke - 2024-03-01 10:00", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "TestReport_2024-03-01_10-00-00.html", msg.Attachments[0].Filename)
	require.Contains(t, string(msg.Attachments[0].Body), "TestReport_2024-03-01_10-00-00.html")
}

func TestSummarizer_Dispatch(t *testing.T) {
	t.Parallel()

	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		files    map[string]time.Time
		err      error
		expected []string
	}{
		{
			name:  "test_send_error_is_logged",
			files: map[string]time.Time{"test-output/reports/TestReport_a.html": mod},
			err:   errors.New("dial tcp: i/o timeout"),
			expected: []string{
				"Failed to send test report email: mailer Send: dial tcp: i/o timeout",
			},
		},
		{
			name:  "test_no_report_is_logged",
			files: map[string]time.Time{},
			expected: []string{
				"Failed to send test report email: no test report found in test-output/reports",
			},
		},
		{
			name:  "test_disabled_is_not_an_error",
			files: map[string]time.Time{"test-output/reports/TestReport_a.html": mod},
			err:   mailer.ErrDisabled,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger := &logging.Recorder{}
			s := New(&fakeSender{err: tc.err}, reportFS(t, tc.files), "Corpstack", WithLogger(logger))

			s.Dispatch(context.Background(), "Regression", scenarioRecords())

			if diff := cmp.Diff(tc.expected, logger.Levels("error")); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
