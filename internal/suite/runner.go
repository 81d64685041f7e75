package suite

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/robotomize/corpsuite/internal/listener"
	"github.com/robotomize/corpsuite/internal/logging"
	"github.com/robotomize/corpsuite/internal/outcome"
)

// Sink receives the records once the run is over.
type Sink interface {
	Flush(ctx context.Context, records []outcome.Record) error
}

type Option func(*Runner)

func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithParallelClasses bounds how many classes run at once. Methods of a
// class always run one after another.
func WithParallelClasses(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.parallel = n
		}
	}
}

func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

func WithParams(p Params) Option {
	return func(r *Runner) {
		r.params = p
	}
}

// Runner drives the class and method lifecycle: one session per class, a
// login before every attempt and a sign out after every terminal outcome.
type Runner struct {
	listener *listener.Listener
	book     *outcome.Book
	open     Opener
	logger   logging.Logger
	parallel int
	sinks    []Sink
	params   Params
}

func NewRunner(l *listener.Listener, book *outcome.Book, open Opener, opts ...Option) *Runner {
	r := Runner{
		listener: l,
		book:     book,
		open:     open,
		logger:   logging.Discard(),
		parallel: 1,
	}

	for _, o := range opts {
		o(&r)
	}

	return &r
}

type Result struct {
	Summary outcome.Summary
	Records []outcome.Record
}

// Failed reports whether any method ended failed.
func (r Result) Failed() bool {
	return r.Summary.Failed > 0
}

// Run executes cases grouped by class and flushes every sink. Sink errors
// are logged; the returned error is only the context error of an
// interrupted run.
func (r *Runner) Run(ctx context.Context, cases []Case) (Result, error) {
	wg, childCtx := errgroup.WithContext(ctx)
	wg.SetLimit(r.parallel)

ClassLoop:
	for _, class := range groupByClass(cases) {
		class := class

		select {
		case <-childCtx.Done():
			break ClassLoop
		default:
		}

		wg.Go(func() error {
			r.runClass(childCtx, class.name, class.cases)
			return nil
		})
	}

	_ = wg.Wait()

	records := r.book.Records()
	r.flush(context.WithoutCancel(ctx), records)

	return Result{Summary: outcome.Fold(records), Records: records}, ctx.Err()
}

func (r *Runner) runClass(ctx context.Context, class string, cases []Case) {
	r.logger.Infof("Setting up browser for %s", class)

	sess, err := r.open(ctx, class)
	if err != nil {
		r.logger.Errorf("Failed to initialize browser for %s: %v", class, err)

		for _, c := range cases {
			rec := r.listener.OnStart(c.Key(), c.Description)
			r.listener.OnSkip(rec, fmt.Sprintf("browser setup failed: %v", err))
		}

		return
	}

	defer func() {
		if err := sess.Close(); err != nil {
			r.logger.Errorf("Failed to close browser: %v", err)
			return
		}
		r.logger.Donef("Browser closed successfully for %s", class)
	}()

	for _, c := range cases {
		if ctx.Err() != nil {
			return
		}

		r.runMethod(ctx, sess, c)
	}
}

func (r *Runner) runMethod(ctx context.Context, sess Session, c Case) {
	for {
		rec := r.listener.OnStart(c.Key(), c.Description)

		err := sess.Login(ctx)
		if err == nil {
			env := NewEnv(sess, r.params, func(format string, args ...any) {
				r.listener.Logf(rec, format, args...)
			})
			err = invoke(ctx, c, env)
		}

		switch {
		case err == nil:
			r.listener.OnSuccess(rec)
		case errors.Is(err, ErrSkip):
			r.listener.OnSkip(rec, skipReason(err))
		case ctx.Err() != nil:
			r.listener.OnSkip(rec, fmt.Sprintf("run interrupted: %v", ctx.Err()))
			return
		default:
			if r.listener.OnFailure(ctx, rec, err, sess) == listener.VerdictRetry {
				continue
			}
		}

		r.signOut(ctx, sess)

		return
	}
}

func (r *Runner) signOut(ctx context.Context, sess Session) {
	if err := sess.SignOut(ctx); err != nil {
		r.logger.Errorf("Failed to sign out after test: %v", err)
	}
}

func (r *Runner) flush(ctx context.Context, records []outcome.Record) {
	for _, s := range r.sinks {
		if err := s.Flush(ctx, records); err != nil {
			r.logger.Errorf("Failed to write test report: %v", err)
		}
	}
}

func invoke(ctx context.Context, c Case, env Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s: %v", c.Key(), p)
		}
	}()

	if c.Run == nil {
		return Skip("no implementation registered")
	}

	return c.Run(ctx, env)
}

type classCases struct {
	name  string
	cases []Case
}

func groupByClass(cases []Case) []classCases {
	var out []classCases

	index := make(map[string]int)
	for _, c := range cases {
		i, ok := index[c.Class]
		if !ok {
			i = len(out)
			index[c.Class] = i
			out = append(out, classCases{name: c.Class})
		}
		out[i].cases = append(out[i].cases, c)
	}

	return out
}
