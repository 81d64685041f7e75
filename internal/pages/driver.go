package pages

import (
	"context"
	"errors"
)

// ErrNotFound is returned by drivers when a selector matches nothing
// within the wait budget.
var ErrNotFound = errors.New("element not found")

// Driver is the browser surface the page objects need. Selectors are
// XPath expressions or CSS, whatever the underlying engine accepts.
type Driver interface {
	Goto(ctx context.Context, url string) error
	WaitForLoad(ctx context.Context) error
	WaitVisible(ctx context.Context, selector string) error
	WaitHidden(ctx context.Context, selector string) error
	Visible(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	JSClick(ctx context.Context, selector string) error
	ScrollIntoView(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	Press(ctx context.Context, selector, key string) error
	Text(ctx context.Context, selector string) (string, error)
	Checked(ctx context.Context, selector string) (bool, error)
	SelectOption(ctx context.Context, selector, label string) error
	Options(ctx context.Context, selector string) ([]string, error)
}
