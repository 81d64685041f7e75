package suite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/robotomize/corpsuite/internal/listener"
	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/outcome"
	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/pages/pagestest"
	"github.com/robotomize/corpsuite/internal/retry"
)

type fakeSession struct {
	mu       sync.Mutex
	driver   *pagestest.Fake
	logins   int
	signOuts int
	closed   int
	loginErr error
	outErr   error
}

func newFakeSession() *fakeSession {
	return &fakeSession{driver: pagestest.New()}
}

func (s *fakeSession) Driver() pages.Driver { return s.driver }

func (s *fakeSession) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (s *fakeSession) Login(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logins++

	return s.loginErr
}

func (s *fakeSession) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.signOuts++

	return s.outErr
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed++

	return nil
}

type memSink struct {
	records []outcome.Record
	err     error
}

func (m *memSink) Flush(_ context.Context, records []outcome.Record) error {
	m.records = records
	return m.err
}

// failing returns a scenario that fails n times before passing; n < 0 never
// passes.
func failing(n int) func(context.Context, Env) error {
	var mu sync.Mutex
	calls := 0

	return func(_ context.Context, env Env) error {
		mu.Lock()
		defer mu.Unlock()

		calls++
		env.Logf("attempt %d", calls)

		if n < 0 || calls <= n {
			return errors.New("element not clickable")
		}

		return nil
	}
}

type harness struct {
	book    *outcome.Book
	logger  *logging.Recorder
	session *fakeSession
	sink    *memSink
	runner  *Runner
}

func newHarness(t *testing.T, open Opener, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		book:    outcome.NewBook(),
		logger:  &logging.Recorder{},
		session: newFakeSession(),
		sink:    &memSink{},
	}

	if open == nil {
		open = func(context.Context, string) (Session, error) { return h.session, nil }
	}

	l := listener.New(h.book, retry.New(retry.NewState()),
		listener.WithLogger(h.logger),
		listener.WithScreenshots(afero.NewMemMapFs(), "shots"),
	)

	opts = append([]Option{WithLogger(h.logger), WithSinks(h.sink)}, opts...)
	h.runner = NewRunner(l, h.book, open, opts...)

	return h
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	cases := []Case{
		{Class: "CardsTest", Method: "A", Run: failing(0)},
		{Class: "CardsTest", Method: "B", Run: failing(1)},
		{Class: "CardsTest", Method: "C", Run: failing(-1)},
	}

	res, err := h.runner.Run(context.Background(), cases)
	require.NoError(t, err)

	got := outcome.Summary{Total: res.Summary.Total, Passed: res.Summary.Passed, Failed: res.Summary.Failed}
	if diff := cmp.Diff(outcome.Summary{Total: 3, Passed: 2, Failed: 1}, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	require.True(t, res.Failed())
	require.Equal(t, 6, h.session.logins)
	require.Equal(t, 3, h.session.signOuts)
	require.Equal(t, 1, h.session.closed)
	require.Len(t, h.sink.records, 3)

	statuses := make(map[string]outcome.Status)
	retries := make(map[string]int)
	for _, rec := range res.Records {
		statuses[rec.Key.Method] = rec.Status
		retries[rec.Key.Method] = rec.Retries
	}

	expected := map[string]outcome.Status{"A": outcome.StatusPassed, "B": outcome.StatusPassed, "C": outcome.StatusFailed}
	if diff := cmp.Diff(expected, statuses); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string]int{"A": 0, "B": 1, "C": 2}, retries); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestRunner_Outcomes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		run      func(context.Context, Env) error
		loginErr error
		outErr   error
		status   outcome.Status
		logins   int
		errors   int
	}{
		{
			name:   "test_skip",
			run:    func(context.Context, Env) error { return Skip("feature flag off") },
			status: outcome.StatusSkipped,
			logins: 1,
		},
		{
			name:   "test_panic_is_a_failure",
			run:    func(context.Context, Env) error { panic("nil page") },
			status: outcome.StatusFailed,
			logins: 3,
			errors: 1,
		},
		{
			name:     "test_login_failure_is_retried",
			run:      failing(0),
			loginErr: errors.New("dashboard not visible"),
			status:   outcome.StatusFailed,
			logins:   3,
			errors:   1,
		},
		{
			name:   "test_sign_out_error_is_swallowed",
			run:    failing(0),
			outErr: errors.New("profile icon not found"),
			status: outcome.StatusPassed,
			logins: 1,
			errors: 1,
		},
		{
			name:   "test_missing_implementation",
			status: outcome.StatusSkipped,
			logins: 1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			h.session.loginErr = tc.loginErr
			h.session.outErr = tc.outErr

			res, err := h.runner.Run(context.Background(), []Case{{Class: "UsersTest", Method: "M", Run: tc.run}})
			require.NoError(t, err)
			require.Len(t, res.Records, 1)

			if diff := cmp.Diff(tc.status, res.Records[0].Status); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			require.Equal(t, tc.logins, h.session.logins)
			require.Equal(t, 1, h.session.signOuts)
			require.Len(t, h.logger.Levels("error"), tc.errors)
		})
	}
}

func TestRunner_OpenFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(context.Context, string) (Session, error) {
		return nil, errors.New("chromium not installed")
	})

	res, err := h.runner.Run(context.Background(), []Case{
		{Class: "FinanceTest", Method: "TC007", Run: failing(0)},
		{Class: "FinanceTest", Method: "TC008", Run: failing(0)},
	})
	require.NoError(t, err)

	require.Equal(t, 2, res.Summary.Skipped)
	require.False(t, res.Failed())
	require.Contains(t, res.Records[0].Err, "chromium not installed")
	require.True(t, strings.HasPrefix(h.logger.Levels("error")[0], "Failed to initialize browser for FinanceTest"))
}

func TestRunner_ParallelClasses(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		sessions = make(map[string]*fakeSession)
	)

	h := newHarness(t, func(_ context.Context, class string) (Session, error) {
		mu.Lock()
		defer mu.Unlock()

		s := newFakeSession()
		sessions[class] = s

		return s, nil
	}, WithParallelClasses(3))

	var cases []Case
	for _, class := range []string{"CardsTest", "ExpenseTest", "FinanceTest"} {
		for _, method := range []string{"one", "two"} {
			cases = append(cases, Case{Class: class, Method: method, Run: failing(0)})
		}
	}

	res, err := h.runner.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Equal(t, 6, res.Summary.Passed)
	require.Len(t, sessions, 3)

	for class, s := range sessions {
		require.Equal(t, 2, s.logins, class)
		require.Equal(t, 1, s.closed, class)
	}
}

func TestRunner_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	h := newHarness(t, nil)
	res, err := h.runner.Run(ctx, []Case{
		{Class: "CardsTest", Method: "A", Run: func(context.Context, Env) error {
			cancel()
			return context.Canceled
		}},
		{Class: "CardsTest", Method: "B", Run: failing(0)},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Records, 1)
	require.Equal(t, outcome.StatusSkipped, res.Records[0].Status)
	require.Len(t, h.sink.records, 1)
}

func TestRunner_SinkError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.sink.err = errors.New("disk full")

	_, err := h.runner.Run(context.Background(), []Case{{Class: "CardsTest", Method: "A", Run: failing(0)}})
	require.NoError(t, err)
	require.Equal(t, []string{"Failed to write test report: disk full"}, h.logger.Levels("error"))
}

func TestEnv_Param(t *testing.T) {
	t.Parallel()

	env := NewEnv(nil, Chain(MapParams{"cards.comment": "From sheet"}, MapParams{"cards.password": "cfg"}), nil)

	require.Equal(t, "From sheet", env.Param("cards.comment", "Automated Test"))
	require.Equal(t, "cfg", env.Param("cards.password", "Wallet_password"))
	require.Equal(t, "fallback", env.Param("missing", "fallback"))
	require.Equal(t, "fallback", Env{}.Param("missing", "fallback"))

	env.Logf("no sink %d", 1)
}
