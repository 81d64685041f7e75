// Package pagestest provides an in-memory pages.Driver for tests.
package pagestest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robotomize/corpsuite/internal/pages"
)

var ErrClick = errors.New("element click intercepted")

// Fake records every interaction. Selectors listed in Hidden never become
// visible. FailClicks makes pointer clicks fail the given number of times,
// or forever when negative. Boxes holds checkbox states and Choices the
// labels of select elements.
type Fake struct {
	mu sync.Mutex

	Hidden     map[string]bool
	FailClicks map[string]int
	Texts      map[string]string
	Boxes      map[string]bool
	Choices    map[string][]string
	// OnClick runs after a successful click on the selector.
	OnClick map[string]func(f *Fake)

	actions []string
}

func New() *Fake {
	return &Fake{
		Hidden:     make(map[string]bool),
		FailClicks: make(map[string]int),
		Texts:      make(map[string]string),
		Boxes:      make(map[string]bool),
		Choices:    make(map[string][]string),
		OnClick:    make(map[string]func(f *Fake)),
	}
}

var _ pages.Driver = (*Fake)(nil)

// Actions returns the recorded interactions, e.g. "click //button".
func (f *Fake) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.actions...)
}

// Clicks returns the selectors that received a pointer or script click.
func (f *Fake) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, a := range f.actions {
		if sel, ok := strings.CutPrefix(a, "click "); ok {
			out = append(out, sel)
			continue
		}
		if sel, ok := strings.CutPrefix(a, "jsclick "); ok {
			out = append(out, sel)
		}
	}

	return out
}

func (f *Fake) record(format string, args ...any) {
	f.actions = append(f.actions, fmt.Sprintf(format, args...))
}

func (f *Fake) visible(selector string) error {
	if f.Hidden[selector] {
		return fmt.Errorf("%w: %s", pages.ErrNotFound, selector)
	}

	return nil
}

func (f *Fake) Goto(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("goto %s", url)

	return ctx.Err()
}

func (f *Fake) WaitForLoad(ctx context.Context) error {
	return ctx.Err()
}

func (f *Fake) WaitVisible(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.visible(selector)
}

func (f *Fake) WaitHidden(ctx context.Context, selector string) error {
	return ctx.Err()
}

func (f *Fake) Visible(_ context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.Hidden[selector], nil
}

func (f *Fake) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	if err := f.visible(selector); err != nil {
		f.mu.Unlock()
		return err
	}

	if n := f.FailClicks[selector]; n != 0 {
		if n > 0 {
			f.FailClicks[selector] = n - 1
		}
		f.record("failed click %s", selector)
		f.mu.Unlock()
		return ErrClick
	}

	f.record("click %s", selector)
	hook := f.OnClick[selector]
	f.mu.Unlock()

	if hook != nil {
		hook(f)
	}

	return nil
}

func (f *Fake) JSClick(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	if err := f.visible(selector); err != nil {
		f.mu.Unlock()
		return err
	}

	f.record("jsclick %s", selector)
	hook := f.OnClick[selector]
	f.mu.Unlock()

	if hook != nil {
		hook(f)
	}

	return nil
}

func (f *Fake) ScrollIntoView(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.visible(selector)
}

func (f *Fake) Fill(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.visible(selector); err != nil {
		return err
	}

	f.record("fill %s %s", selector, text)

	return nil
}

func (f *Fake) Press(_ context.Context, selector, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("press %s %s", selector, key)

	return nil
}

func (f *Fake) Text(_ context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.visible(selector); err != nil {
		return "", err
	}

	return f.Texts[selector], nil
}

func (f *Fake) SetChecked(selector string, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Boxes[selector] = v
}

func (f *Fake) Checked(_ context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Boxes[selector], nil
}

func (f *Fake) SelectOption(_ context.Context, selector, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.Choices[selector] {
		if o == label {
			f.record("select %s %s", selector, label)
			return nil
		}
	}

	return fmt.Errorf("%w: option %q", pages.ErrNotFound, label)
}

func (f *Fake) Options(_ context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Choices[selector], nil
}
