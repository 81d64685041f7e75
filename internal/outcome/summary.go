package outcome

import (
	"fmt"
	"time"
)

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Elapsed time.Duration
}

// Fold aggregates terminal records. Each record contributes its last terminal
// status once; records still running are left out.
func Fold(records []Record) Summary {
	var (
		s           Summary
		first, last time.Time
	)

	for _, rec := range records {
		if !rec.Terminal() {
			continue
		}

		s.Total++
		switch rec.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}

		if !rec.Start.IsZero() && (first.IsZero() || rec.Start.Before(first)) {
			first = rec.Start
		}

		if rec.Stop.After(last) {
			last = rec.Stop
		}
	}

	if !first.IsZero() && last.After(first) {
		s.Elapsed = last.Sub(first)
	}

	return s
}

// Percent returns n as a share of Total; an empty summary yields 0.
func (s Summary) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}

	return float64(n) * 100.0 / float64(s.Total)
}

func (s Summary) PassRate() float64 { return s.Percent(s.Passed) }
func (s Summary) FailRate() float64 { return s.Percent(s.Failed) }
func (s Summary) SkipRate() float64 { return s.Percent(s.Skipped) }

// Duration formats Elapsed as HH:MM:SS.
func (s Summary) Duration() string {
	d := s.Elapsed.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute

	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}
