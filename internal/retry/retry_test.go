package retry

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robotomize/corpsuite/internal/outcome"
)

func TestCoordinator_ShouldRetry(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		maxAttempts int
		failures    int
		expected    []bool
	}{
		{
			name:        "test_unseen_key_retries",
			maxAttempts: 2,
			failures:    1,
			expected:    []bool{true},
		},
		{
			name:        "test_exhausted_after_max",
			maxAttempts: 2,
			failures:    4,
			expected:    []bool{true, true, false, false},
		},
		{
			name:        "test_zero_budget",
			maxAttempts: 0,
			failures:    2,
			expected:    []bool{false, false},
		},
		{
			name:        "test_negative_budget_clamped",
			maxAttempts: -3,
			failures:    1,
			expected:    []bool{false},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := New(NewState(), WithMaxAttempts(tc.maxAttempts))
			key := outcome.Key{Class: "CardsTest", Method: "TC013"}

			got := make([]bool, 0, tc.failures)
			for i := 0; i < tc.failures; i++ {
				got = append(got, c.ShouldRetry(key))
			}

			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestCoordinator_Decide(t *testing.T) {
	t.Parallel()

	c := New(nil)
	key := outcome.Key{Class: "ExpenseTest", Method: "TC030"}

	if got := c.Attempts(key); got != 0 {
		t.Errorf("got: %d, want: 0", got)
	}

	want := []Decision{
		{Retry: true, Attempt: 1},
		{Retry: true, Attempt: 2},
		{Retry: false, Attempt: 2},
	}

	for i, w := range want {
		if diff := cmp.Diff(w, c.Decide(key)); diff != "" {
			t.Errorf("decision %d mismatch (-want, +got):\n%s", i, diff)
		}
	}

	other := outcome.Key{Class: "ExpenseTest", Method: "TC031"}
	if diff := cmp.Diff(Decision{Retry: true, Attempt: 1}, c.Decide(other)); diff != "" {
		t.Errorf("independent key mismatch (-want, +got):\n%s", diff)
	}
}

func TestCoordinator_SharedStateAcrossRuns(t *testing.T) {
	t.Parallel()

	key := outcome.Key{Class: "FinanceTest", Method: "TC040"}

	first := New(NewState(), WithMaxAttempts(1))
	second := New(NewState(), WithMaxAttempts(1))

	if !first.ShouldRetry(key) || first.ShouldRetry(key) {
		t.Fatalf("first run did not follow its budget")
	}

	if !second.ShouldRetry(key) {
		t.Errorf("second run saw counters of the first run")
	}
}

func TestCoordinator_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 32

	c := New(NewState(), WithMaxAttempts(5))
	key := outcome.Key{Class: "UsersTest", Method: "TC050"}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.ShouldRetry(key) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if granted != 5 {
		t.Errorf("got: %d, want: 5", granted)
	}

	if got := c.Attempts(key); got != 5 {
		t.Errorf("got: %d, want: 5", got)
	}
}
