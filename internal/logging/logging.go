package logging

import (
	"fmt"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Logger is the subset of the bitrise logger used across the suite.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Donef(format string, v ...interface{})
}

// New returns the console logger, with debug lines when verbose is set.
func New(verbose bool) Logger {
	logger := log.NewLogger()
	logger.EnableDebugLog(verbose)

	return logger
}

// Discard drops every line.
func Discard() Logger {
	return discard{}
}

type discard struct{}

func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}
func (discard) Debugf(string, ...interface{}) {}
func (discard) Donef(string, ...interface{})  {}

// Recorder keeps every formatted line with its level, for assertions.
type Recorder struct {
	mu    sync.Mutex
	Lines []Line
}

type Line struct {
	Level   string
	Message string
}

func (r *Recorder) Infof(format string, v ...interface{})  { r.add("info", format, v...) }
func (r *Recorder) Warnf(format string, v ...interface{})  { r.add("warn", format, v...) }
func (r *Recorder) Errorf(format string, v ...interface{}) { r.add("error", format, v...) }
func (r *Recorder) Debugf(format string, v ...interface{}) { r.add("debug", format, v...) }
func (r *Recorder) Donef(format string, v ...interface{})  { r.add("done", format, v...) }

// Levels returns the messages logged at level.
func (r *Recorder) Levels(level string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, l := range r.Lines {
		if l.Level == level {
			out = append(out, l.Message)
		}
	}

	return out
}

func (r *Recorder) add(level, format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, Line{Level: level, Message: fmt.Sprintf(format, v...)})
}
