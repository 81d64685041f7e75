package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/retry"

	"github.com/robotomize/corpsuite/internal/logging"
)

const (
	ToastSelector      = "//div[contains(@class,'customToastContent')]"
	closeToastSelector = "//img[@src='/assets/images/close-icon.svg']"
	dashboardSelector  = "//div[contains(@class,'dashboardLayout')]"
	privilegedSelector = "//span[@class='white-color']"
	downloadIconSel    = "//span[@name='download']//i[@id='icon-undefined']"
	emailInputSelector = "//input[@placeholder='Add Mail Id & Press Enter']"
)

var ErrEmptyToast = errors.New("toast message is empty")

type Option func(*Base)

func WithLogger(logger logging.Logger) Option {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithAttempts sets how many times a click or toast read is tried before
// the error is returned.
func WithAttempts(n uint) Option {
	return func(b *Base) {
		if n > 0 {
			b.attempts = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(b *Base) {
		if d >= 0 {
			b.interval = d
		}
	}
}

// Base holds the interaction helpers shared by every page object.
type Base struct {
	d        Driver
	logger   logging.Logger
	attempts uint
	interval time.Duration
}

func NewBase(d Driver, opts ...Option) Base {
	b := Base{
		d:        d,
		logger:   logging.Discard(),
		attempts: 3,
		interval: 500 * time.Millisecond,
	}

	for _, o := range opts {
		o(&b)
	}

	return b
}

func (b Base) Driver() Driver {
	return b.d
}

func (b Base) Open(ctx context.Context, url string) error {
	b.logger.Debugf("Navigating to %s", url)

	if err := b.d.Goto(ctx, url); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}

	return b.WaitForLoad(ctx)
}

// WaitForLoad waits for the page to settle. A slow settle is not an error
// on its own; the next explicit wait decides.
func (b Base) WaitForLoad(ctx context.Context) error {
	if err := b.d.WaitForLoad(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.logger.Debugf("Page load wait ended early: %v", err)
	}

	return nil
}

func (b Base) WaitVisible(ctx context.Context, selector string) error {
	b.logger.Debugf("Waiting for element visibility: %s", selector)

	if err := b.d.WaitVisible(ctx, selector); err != nil {
		return fmt.Errorf("wait visible %s: %w", selector, err)
	}

	return nil
}

// Click waits for selector and clicks it, repeating the click on failure.
func (b Base) Click(ctx context.Context, selector string) error {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return err
	}

	err := b.try(ctx, func(attempt uint) error {
		if err := b.d.Click(ctx, selector); err != nil {
			b.logger.Debugf("Click on %s failed (attempt %d): %v", selector, attempt+1, err)
			return err
		}
		return nil
	})
	if err != nil {
		b.logger.Errorf("Failed to click element after %d attempts: %s", b.attempts, selector)
		return fmt.Errorf("click %s: %w", selector, err)
	}

	return nil
}

// ClickWithFallback clicks selector and falls back to a script click when
// the element is covered or otherwise refuses a pointer click.
func (b Base) ClickWithFallback(ctx context.Context, selector string) error {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return err
	}

	if err := b.d.ScrollIntoView(ctx, selector); err != nil {
		b.logger.Debugf("Scroll to %s failed: %v", selector, err)
	}

	if err := b.d.Click(ctx, selector); err != nil {
		b.logger.Debugf("Regular click failed, using JavaScript click: %v", err)

		if err := b.d.JSClick(ctx, selector); err != nil {
			return fmt.Errorf("js click %s: %w", selector, err)
		}
	}

	return nil
}

// ClickFirst clicks the first of selectors that becomes visible and
// returns it.
func (b Base) ClickFirst(ctx context.Context, selectors ...string) (string, error) {
	for _, sel := range selectors {
		if err := b.d.WaitVisible(ctx, sel); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			b.logger.Debugf("Element not found using locator: %s", sel)
			continue
		}

		if err := b.ClickWithFallback(ctx, sel); err != nil {
			return "", err
		}

		return sel, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, strings.Join(selectors, " | "))
}

func (b Base) Fill(ctx context.Context, selector, text string) error {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return err
	}

	if err := b.d.Fill(ctx, selector, text); err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}

	return nil
}

// FillAndEnter fills a tag-style input and confirms the value with Enter.
func (b Base) FillAndEnter(ctx context.Context, selector, text string) error {
	if err := b.Fill(ctx, selector, text); err != nil {
		return err
	}

	if err := b.d.Press(ctx, selector, "Enter"); err != nil {
		return fmt.Errorf("press enter %s: %w", selector, err)
	}

	return nil
}

func (b Base) Text(ctx context.Context, selector string) (string, error) {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return "", err
	}

	text, err := b.d.Text(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("text %s: %w", selector, err)
	}

	return strings.TrimSpace(text), nil
}

// Displayed reports whether selector is visible right now, without waiting.
func (b Base) Displayed(ctx context.Context, selector string) bool {
	ok, err := b.d.Visible(ctx, selector)
	if err != nil {
		b.logger.Debugf("Element %s is not displayed: %v", selector, err)
		return false
	}

	return ok
}

func (b Base) Checked(ctx context.Context, selector string) (bool, error) {
	if err := b.d.WaitVisible(ctx, selector); err != nil {
		return false, fmt.Errorf("wait visible %s: %w", selector, err)
	}

	ok, err := b.d.Checked(ctx, selector)
	if err != nil {
		return false, fmt.Errorf("checked %s: %w", selector, err)
	}

	return ok, nil
}

func (b Base) Select(ctx context.Context, selector, label string) error {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return err
	}

	if err := b.d.SelectOption(ctx, selector, label); err != nil {
		return fmt.Errorf("select %q in %s: %w", label, selector, err)
	}

	return nil
}

func (b Base) Options(ctx context.Context, selector string) ([]string, error) {
	if err := b.WaitVisible(ctx, selector); err != nil {
		return nil, err
	}

	opts, err := b.d.Options(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("options %s: %w", selector, err)
	}

	return opts, nil
}

// Toast polls the notification toast until it carries text.
func (b Base) Toast(ctx context.Context) (string, error) {
	var text string

	err := b.try(ctx, func(uint) error {
		t, err := b.Text(ctx, ToastSelector)
		if err != nil {
			return err
		}
		if t == "" {
			return ErrEmptyToast
		}
		text = t
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("toast: %w", err)
	}

	b.logger.Debugf("Toast message text: %s", text)

	return text, nil
}

// CloseToast dismisses the toast when it is still on screen.
func (b Base) CloseToast(ctx context.Context) {
	if !b.Displayed(ctx, closeToastSelector) {
		return
	}

	if err := b.d.Click(ctx, closeToastSelector); err != nil {
		b.logger.Debugf("Closing toast failed: %v", err)
	}
}

// ExpectToast reads the toast, closes it and returns its text.
func (b Base) ExpectToast(ctx context.Context) (string, error) {
	text, err := b.Toast(ctx)
	if err != nil {
		return "", err
	}

	b.CloseToast(ctx)

	return text, nil
}

func (b Base) try(ctx context.Context, fn func(attempt uint) error) error {
	return retry.Times(b.attempts - 1).Wait(b.interval).TryWithAbort(func(attempt uint) (error, bool) {
		if err := ctx.Err(); err != nil {
			return err, true
		}

		err := fn(attempt)

		return err, errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	})
}

// ClickAll clicks selectors in order and stops at the first failure.
func (b Base) ClickAll(ctx context.Context, selectors ...string) error {
	for _, sel := range selectors {
		if err := b.Click(ctx, sel); err != nil {
			return err
		}
	}

	return nil
}
