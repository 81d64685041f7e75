package outcome

import (
	"fmt"
	"time"
)

const (
	ActionStart  = "start"
	ActionRetry  = "retry"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionLog    = "log"
	ActionAttach = "attach"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelPass    Level = "pass"
	LevelFail    Level = "fail"
	LevelSkip    Level = "skip"
)

// Key identifies one test method of one class for the lifetime of a run.
type Key struct {
	Class  string `json:"class"`
	Method string `json:"method"`
}

func (k Key) String() string {
	return k.Class + "." + k.Method
}

type LogLine struct {
	Time    time.Time
	Level   Level
	Message string
}

type Attachment struct {
	Name string `json:"name"`
	Mime string `json:"mime"`
	Path string `json:"path"`
}

// Event is a single lifecycle transition of a record. The same events drive
// live recording and journal replay.
type Event struct {
	Time       time.Time   `json:"time"`
	Class      string      `json:"class"`
	Method     string      `json:"method"`
	Action     string      `json:"action"`
	Attempt    int         `json:"attempt,omitempty"`
	Output     string      `json:"output,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

func (e Event) Key() Key {
	return Key{Class: e.Class, Method: e.Method}
}

type Record struct {
	Key         Key
	Description string
	Status      Status
	Retries     int
	Screenshot  string
	Err         string
	Start       time.Time
	Stop        time.Time
	Log         []LogLine
	Attachments []Attachment
}

func (r *Record) Terminal() bool {
	return r.Status == StatusPassed || r.Status == StatusFailed || r.Status == StatusSkipped
}

// Flaky reports a pass that needed at least one retry.
func (r *Record) Flaky() bool {
	return r.Status == StatusPassed && r.Retries > 0
}

func (r *Record) Elapsed() time.Duration {
	if r.Stop.Before(r.Start) {
		return 0
	}

	return r.Stop.Sub(r.Start)
}

func (r *Record) Update(e Event) {
	method := r.Key.Method
	switch e.Action {
	case ActionStart:
		if r.Start.IsZero() {
			r.Start = e.Time
		}
		r.Status = StatusRunning
		r.logf(e.Time, LevelInfo, "Test Started: %s", method)
	case ActionRetry:
		r.Status = StatusRunning
		r.Retries = e.Attempt
		r.Err = e.Output
		r.logf(e.Time, LevelWarning, "Test Failed but will be retried: %s", method)
		if e.Output != "" {
			r.logf(e.Time, LevelWarning, "Error: %s", e.Output)
		}
	case ActionPass:
		r.Stop = e.Time
		r.Status = StatusPassed
		r.Err = ""
		if r.Retries > 0 {
			r.logf(e.Time, LevelPass, "Test Passed after %d retry attempts: %s", r.Retries, method)
			break
		}
		r.logf(e.Time, LevelPass, "Test Passed: %s", method)
	case ActionFail:
		r.Stop = e.Time
		r.Status = StatusFailed
		r.Err = e.Output
		r.logf(e.Time, LevelFail, "Test Failed: %s", method)
		if e.Output != "" {
			r.logf(e.Time, LevelFail, "Error: %s", e.Output)
		}
	case ActionSkip:
		r.Stop = e.Time
		r.Status = StatusSkipped
		r.Err = e.Output
		r.logf(e.Time, LevelSkip, "Test Skipped: %s", method)
	case ActionLog:
		r.logf(e.Time, LevelInfo, "%s", e.Output)
	case ActionAttach:
		if e.Attachment == nil {
			return
		}
		r.Attachments = append(r.Attachments, *e.Attachment)
		if e.Attachment.Mime == "image/png" {
			r.Screenshot = e.Attachment.Path
		}
	}
}

func (r *Record) logf(t time.Time, level Level, format string, args ...any) {
	r.Log = append(r.Log, LogLine{Time: t, Level: level, Message: fmt.Sprintf(format, args...)})
}
