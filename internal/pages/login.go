package pages

import (
	"context"
	"fmt"
)

const (
	phoneFieldSelector    = "//input[@id='phone-no']"
	emailFieldSelector    = "//input[@id='email-id']"
	emailSwitchSelector   = "//div[@id='slider-2-signIn-container']"
	nextButtonSelector    = "//button[normalize-space()='Next']"
	passwordFieldSelector = "//input[@id='password-field']"
	signInButtonSelector  = "//button[normalize-space()='Sign In']"
)

// Login signs a user into the portal starting from its base URL.
type Login interface {
	Login(ctx context.Context, url, username, password string) error
	// Landing is the element shown by the login screen, used to confirm a
	// sign out.
	Landing() string
}

// CorpLogin is the Corpstack phone number and password flow.
type CorpLogin struct {
	Base
}

func NewCorpLogin(d Driver, opts ...Option) *CorpLogin {
	return &CorpLogin{Base: NewBase(d, opts...)}
}

func (p *CorpLogin) Landing() string {
	return phoneFieldSelector
}

func (p *CorpLogin) Login(ctx context.Context, url, username, password string) error {
	p.logger.Infof("Login process started - Navigating to URL: %s", url)

	steps := []func() error{
		func() error { return p.Open(ctx, url) },
		func() error { return p.Fill(ctx, phoneFieldSelector, username) },
		func() error { return p.Click(ctx, nextButtonSelector) },
		func() error { return p.Fill(ctx, passwordFieldSelector, password) },
		func() error { return p.Click(ctx, signInButtonSelector) },
		func() error { return p.WaitVisible(ctx, dashboardSelector) },
	}

	if err := runSteps(steps); err != nil {
		p.logger.Errorf("Login process failed: %v", err)
		return fmt.Errorf("corpstack login: %w", err)
	}

	p.logger.Infof("Login process completed successfully")

	return nil
}

// HDFCLogin is the HDFC email and password flow. The email form sits behind
// a slider that is only present on some deployments.
type HDFCLogin struct {
	Base
}

func NewHDFCLogin(d Driver, opts ...Option) *HDFCLogin {
	return &HDFCLogin{Base: NewBase(d, opts...)}
}

func (p *HDFCLogin) Landing() string {
	return emailFieldSelector
}

func (p *HDFCLogin) Login(ctx context.Context, url, username, password string) error {
	p.logger.Infof("Login process started - Navigating to URL: %s", url)

	steps := []func() error{
		func() error { return p.Open(ctx, url) },
		func() error {
			if p.Displayed(ctx, emailSwitchSelector) {
				return p.Click(ctx, emailSwitchSelector)
			}
			return nil
		},
		func() error { return p.Fill(ctx, emailFieldSelector, username) },
		func() error { return p.Click(ctx, nextButtonSelector) },
		func() error { return p.Fill(ctx, passwordFieldSelector, password) },
		func() error { return p.Click(ctx, signInButtonSelector) },
		func() error { return p.WaitVisible(ctx, dashboardSelector) },
	}

	if err := runSteps(steps); err != nil {
		p.logger.Errorf("Login process failed: %v", err)
		return fmt.Errorf("hdfc login: %w", err)
	}

	p.logger.Infof("Login process completed successfully")

	return nil
}

func runSteps(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	return nil
}
