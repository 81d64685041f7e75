package pages

import (
	"context"
	"fmt"
)

const signOutSelector = "//div[contains(text(),'Sign Out')]"

var profileIconSelectors = []string{
	"//div[contains(@class,'profileIcon')]",
	"//div[contains(@class,'hw-avatar-container')]",
	"//div[contains(@class,'user-avatar')]",
}

type SignOut struct {
	Base
	landing string
}

// NewSignOut returns the sign out flow; landing is the login screen element
// that confirms the session ended.
func NewSignOut(d Driver, landing string, opts ...Option) *SignOut {
	return &SignOut{Base: NewBase(d, opts...), landing: landing}
}

func (p *SignOut) SignOut(ctx context.Context) error {
	p.logger.Infof("Starting Sign Out Process")

	icon, err := p.ClickFirst(ctx, profileIconSelectors...)
	if err != nil {
		return fmt.Errorf("profile icon: %w", err)
	}
	p.logger.Debugf("Found profile icon using XPath: %s", icon)

	if err := p.ClickWithFallback(ctx, signOutSelector); err != nil {
		return fmt.Errorf("sign out option: %w", err)
	}

	if p.landing != "" {
		if err := p.WaitVisible(ctx, p.landing); err != nil {
			return fmt.Errorf("login page after sign out: %w", err)
		}
	}

	p.logger.Infof("Sign Out Process completed successfully")

	return nil
}
