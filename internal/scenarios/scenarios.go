// Package scenarios registers the portal test methods run by the suite.
package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/robotomize/corpsuite/internal/config"
	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/slice"
	"github.com/robotomize/corpsuite/internal/suite"
)

// Parameter keys looked up in the test data sheet and the properties file.
const (
	ParamTestEmail      = "test_email"
	ParamWalletPassword = "wallet_password"
	ParamCardComment    = "card_comment"
	ParamWalletAmount   = "wallet_amount"
	ParamWalletComment  = "wallet_comment"
	ParamWalletLimit    = "wallet_limit"
)

const (
	defaultCardComment    = "Automated Test"
	defaultWalletPassword = "Wallet_password"
	defaultWalletAmount   = "1"
	defaultWalletComment  = "Automated Load"
	defaultWalletLimit    = "11"
)

// Catalogue returns every method registered for portal, grouped by class in
// run order.
func Catalogue(portal config.Portal, opts ...pages.Option) []suite.Case {
	c := catalogue{opts: opts}
	if portal == config.PortalHDFC {
		return c.hdfc()
	}

	return c.corpstack()
}

// Classes lists the class names of cases in first appearance order.
func Classes(cases []suite.Case) []string {
	return slice.UniqueBy(cases, func(c suite.Case) string { return c.Class })
}

type catalogue struct {
	opts []pages.Option
}

func (c catalogue) driver(env suite.Env) pages.Driver {
	return env.Session.Driver()
}

// confirm reads and dismisses the toast acknowledging the last action.
func (c catalogue) confirm(ctx context.Context, env suite.Env) (string, error) {
	text, err := pages.NewBase(c.driver(env), c.opts...).ExpectToast(ctx)
	if err != nil {
		return "", err
	}

	env.Logf("Toast message: %s", text)

	return text, nil
}

// confirmContains is confirm with an expected fragment of the toast text.
func (c catalogue) confirmContains(ctx context.Context, env suite.Env, want string) error {
	text, err := c.confirm(ctx, env)
	if err != nil {
		return err
	}

	if !strings.Contains(text, want) {
		return fmt.Errorf("toast %q does not contain %q", text, want)
	}

	return nil
}

func testEmail(env suite.Env) (string, error) {
	email := env.Param(ParamTestEmail, "")
	if email == "" {
		return "", suite.Skip(ParamTestEmail + " is not configured")
	}

	return email, nil
}
