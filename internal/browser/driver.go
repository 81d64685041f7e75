package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/robotomize/corpsuite/internal/pages"
)

var _ pages.Driver = (*Driver)(nil)

// Driver adapts a playwright page to pages.Driver. Every selector resolves
// to its first match.
type Driver struct {
	page playwright.Page
}

func NewDriver(page playwright.Page) *Driver {
	return &Driver{page: page}
}

func (d *Driver) locator(selector string) playwright.Locator {
	return d.page.Locator(selector).First()
}

func (d *Driver) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateDomcontentloaded})

	return err
}

func (d *Driver) WaitForLoad(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateNetworkidle})
}

func (d *Driver) WaitVisible(ctx context.Context, selector string) error {
	return d.waitFor(ctx, selector, playwright.WaitForSelectorStateVisible)
}

func (d *Driver) WaitHidden(ctx context.Context, selector string) error {
	return d.waitFor(ctx, selector, playwright.WaitForSelectorStateHidden)
}

func (d *Driver) waitFor(ctx context.Context, selector string, state *playwright.WaitForSelectorState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return classify(selector, d.locator(selector).WaitFor(playwright.LocatorWaitForOptions{State: state}))
}

func (d *Driver) Visible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return d.locator(selector).IsVisible()
}

func (d *Driver) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return classify(selector, d.locator(selector).Click())
}

func (d *Driver) JSClick(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.locator(selector).Evaluate("el => el.click()", nil)

	return classify(selector, err)
}

func (d *Driver) ScrollIntoView(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return classify(selector, d.locator(selector).ScrollIntoViewIfNeeded())
}

func (d *Driver) Fill(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return classify(selector, d.locator(selector).Fill(text))
}

func (d *Driver) Press(ctx context.Context, selector, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return classify(selector, d.locator(selector).Press(key))
}

func (d *Driver) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := d.locator(selector).InnerText()

	return text, classify(selector, err)
}

func (d *Driver) Checked(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := d.locator(selector).IsChecked()

	return ok, classify(selector, err)
}

func (d *Driver) SelectOption(ctx context.Context, selector, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.locator(selector).SelectOption(playwright.SelectOptionValues{Labels: playwright.StringSlice(label)})

	return classify(selector, err)
}

func (d *Driver) Options(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := d.locator(selector).Locator("option").AllInnerTexts()

	return opts, classify(selector, err)
}

// classify maps playwright timeouts to pages.ErrNotFound so page objects can
// tell a missing element from a broken browser.
func classify(selector string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", pages.ErrNotFound, selector, err)
	}

	return err
}
