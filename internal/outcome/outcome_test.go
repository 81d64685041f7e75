package outcome

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

func TestRecord_Update(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		events      []Event
		wantStatus  Status
		wantRetries int
		wantLast    string
		wantErr     string
	}{
		{
			name: "test_clean_pass",
			events: []Event{
				{Time: at(0), Action: ActionStart},
				{Time: at(1), Action: ActionPass},
			},
			wantStatus: StatusPassed,
			wantLast:   "Test Passed: TC001",
		},
		{
			name: "test_flaky_pass",
			events: []Event{
				{Time: at(0), Action: ActionStart},
				{Time: at(1), Action: ActionRetry, Attempt: 1, Output: "toast not shown"},
				{Time: at(2), Action: ActionStart},
				{Time: at(3), Action: ActionPass},
			},
			wantStatus:  StatusPassed,
			wantRetries: 1,
			wantLast:    "Test Passed after 1 retry attempts: TC001",
		},
		{
			name: "test_exhausted_fail",
			events: []Event{
				{Time: at(0), Action: ActionStart},
				{Time: at(1), Action: ActionRetry, Attempt: 1, Output: "boom"},
				{Time: at(2), Action: ActionStart},
				{Time: at(3), Action: ActionRetry, Attempt: 2, Output: "boom"},
				{Time: at(4), Action: ActionStart},
				{Time: at(5), Action: ActionFail, Output: "boom"},
			},
			wantStatus:  StatusFailed,
			wantRetries: 2,
			wantLast:    "Error: boom",
			wantErr:     "boom",
		},
		{
			name: "test_skip",
			events: []Event{
				{Time: at(0), Action: ActionStart},
				{Time: at(1), Action: ActionSkip, Output: "disabled"},
			},
			wantStatus: StatusSkipped,
			wantLast:   "Test Skipped: TC001",
			wantErr:    "disabled",
		},
		{
			name: "test_still_running",
			events: []Event{
				{Time: at(0), Action: ActionStart},
				{Time: at(1), Action: ActionLog, Output: "opened cards"},
			},
			wantStatus: StatusRunning,
			wantLast:   "opened cards",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &Record{Key: Key{Class: "CardsTest", Method: "TC001"}}
			for _, e := range tc.events {
				rec.Update(e)
			}

			if diff := cmp.Diff(tc.wantStatus, rec.Status); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.wantRetries, rec.Retries); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if diff := cmp.Diff(tc.wantErr, rec.Err); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			last := rec.Log[len(rec.Log)-1].Message
			if diff := cmp.Diff(tc.wantLast, last); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			if !rec.Start.Equal(at(0)) {
				t.Errorf("got start: %v, want: %v", rec.Start, at(0))
			}
		})
	}
}

func TestRecord_Attach(t *testing.T) {
	t.Parallel()

	rec := &Record{}
	rec.Update(Event{Action: ActionAttach, Attachment: &Attachment{Name: "log", Mime: "text/plain", Path: "a.txt"}})
	rec.Update(Event{Action: ActionAttach, Attachment: &Attachment{Name: "shot", Mime: "image/png", Path: "a.png"}})
	rec.Update(Event{Action: ActionAttach})

	if diff := cmp.Diff("a.png", rec.Screenshot); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if len(rec.Attachments) != 2 {
		t.Errorf("got: %d attachments, want: 2", len(rec.Attachments))
	}
}

func TestBook_Open(t *testing.T) {
	t.Parallel()

	b := NewBook()
	key := Key{Class: "UsersTest", Method: "TC020"}

	first := b.Open(key, "")
	second := b.Open(key, "ignored")
	b.Open(Key{Class: "UsersTest", Method: "TC021"}, "search users")

	if first != second {
		t.Errorf("got distinct handles for the same key")
	}

	if diff := cmp.Diff("Test execution for TC020", first.Description); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	got := make([]string, 0)
	for _, rec := range b.Records() {
		got = append(got, rec.Key.String())
	}

	if diff := cmp.Diff([]string{"UsersTest.TC020", "UsersTest.TC021"}, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Key: Key{Method: "A"}, Status: StatusPassed, Start: at(0), Stop: at(10)},
		{Key: Key{Method: "B"}, Status: StatusPassed, Retries: 1, Start: at(10), Stop: at(25)},
		{Key: Key{Method: "C"}, Status: StatusFailed, Retries: 2, Start: at(25), Stop: at(3700)},
		{Key: Key{Method: "D"}, Status: StatusRunning, Start: at(3700)},
	}

	got := Fold(records)
	want := Summary{Total: 3, Passed: 2, Failed: 1, Elapsed: 3700 * time.Second}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff("01:01:40", got.Duration()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestSummary_Percent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		summary Summary
		want    [3]float64
	}{
		{
			name:    "test_empty",
			summary: Summary{},
			want:    [3]float64{0, 0, 0},
		},
		{
			name:    "test_thirds",
			summary: Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1},
			want:    [3]float64{100.0 / 3, 100.0 / 3, 100.0 / 3},
		},
		{
			name:    "test_all_pass",
			summary: Summary{Total: 4, Passed: 4},
			want:    [3]float64{100, 0, 0},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := [3]float64{tc.summary.PassRate(), tc.summary.FailRate(), tc.summary.SkipRate()}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			sum := got[0] + got[1] + got[2]
			if tc.summary.Total > 0 && math.Abs(sum-100) > 0.01 {
				t.Errorf("got: %f, want: 100", sum)
			}
		})
	}
}
