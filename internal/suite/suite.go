package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robotomize/corpsuite/internal/listener"
	"github.com/robotomize/corpsuite/internal/outcome"
	"github.com/robotomize/corpsuite/internal/pages"
)

// ErrSkip marks a method as skipped instead of failed.
var ErrSkip = errors.New("skipped")

func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkip, reason)
}

func skipReason(err error) string {
	msg := err.Error()
	if reason, ok := strings.CutPrefix(msg, ErrSkip.Error()+": "); ok {
		return reason
	}

	return msg
}

// Session is the browser environment shared by the methods of one class.
type Session interface {
	listener.Shooter
	Driver() pages.Driver
	Login(ctx context.Context) error
	SignOut(ctx context.Context) error
	Close() error
}

// Opener starts a session for a test class.
type Opener func(ctx context.Context, class string) (Session, error)

// Params resolves scenario inputs such as comments or wallet passwords.
type Params interface {
	Value(key, fallback string) string
}

// MapParams is a fixed set of scenario inputs.
type MapParams map[string]string

func (m MapParams) Value(key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}

	return fallback
}

// Chain consults params in order and returns the first value found.
func Chain(params ...Params) Params {
	return chain(params)
}

type chain []Params

func (c chain) Value(key, fallback string) string {
	for _, p := range c {
		if p == nil {
			continue
		}

		const missing = "\x00"
		if v := p.Value(key, missing); v != missing {
			return v
		}
	}

	return fallback
}

// Env is handed to a running method.
type Env struct {
	Session Session
	Params  Params
	logf    func(format string, args ...any)
}

func NewEnv(s Session, params Params, logf func(format string, args ...any)) Env {
	return Env{Session: s, Params: params, logf: logf}
}

// Logf adds a step line to the method's report entry.
func (e Env) Logf(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

func (e Env) Param(key, fallback string) string {
	if e.Params == nil {
		return fallback
	}

	return e.Params.Value(key, fallback)
}

// Case is one registered test method.
type Case struct {
	Class       string
	Method      string
	Description string
	Run         func(ctx context.Context, env Env) error
}

func (c Case) Key() outcome.Key {
	return outcome.Key{Class: c.Class, Method: c.Method}
}
