package pages

import (
	"context"
	"errors"
	"fmt"
)

var ErrCardUnchanged = errors.New("card status did not change after toggle")

var cardsAndWalletsSelectors = []string{
	"//div[contains(text(),'Cards & Wallets')]",
	"//span[contains(text(),'Cards & Wallets')]",
	"//a[contains(text(),'Cards & Wallets')]",
	"//div[contains(@class,'menu-item')]//div[contains(text(),'Cards & Wallets')]",
	"//*[contains(text(), 'Cards & Wallets')]",
}

const (
	cardToggleSelector   = "//input[@type='checkbox']"
	cardCommentSelector  = "//input[@placeholder='Enter Comment']"
	cardPasswordSelector = "//input[@placeholder='Enter Password']"
	proceedSelector      = "//button[normalize-space()='Proceed']"
)

// Cards is the employee Cards & Wallets screen.
type Cards struct {
	Base
}

func NewCards(d Driver, opts ...Option) *Cards {
	return &Cards{Base: NewBase(d, opts...)}
}

func (p *Cards) Open(ctx context.Context) error {
	p.logger.Infof("Attempting to click Cards & Wallets link...")

	if err := p.WaitForLoad(ctx); err != nil {
		return err
	}

	sel, err := p.ClickFirst(ctx, cardsAndWalletsSelectors...)
	if err != nil {
		return fmt.Errorf("cards & wallets link: %w", err)
	}

	p.logger.Infof("Successfully clicked Cards & Wallets link using %s", sel)

	return nil
}

func (p *Cards) Enabled(ctx context.Context) (bool, error) {
	return p.Checked(ctx, cardToggleSelector)
}

// Toggle is the observed effect of a card status change.
type Toggle struct {
	Before bool
	After  bool
	Toast  string
}

// ToggleStatus flips the first card on screen, confirming with comment and
// wallet password, and verifies the status changed.
func (p *Cards) ToggleStatus(ctx context.Context, comment, password string) (Toggle, error) {
	var t Toggle

	before, err := p.Enabled(ctx)
	if err != nil {
		return t, err
	}
	t.Before = before

	steps := []func() error{
		func() error { return p.Click(ctx, cardToggleSelector) },
		func() error { return p.Fill(ctx, cardCommentSelector, comment) },
		func() error { return p.Fill(ctx, cardPasswordSelector, password) },
		func() error { return p.Click(ctx, proceedSelector) },
		func() error {
			toast, err := p.ExpectToast(ctx)
			t.Toast = toast
			return err
		},
	}
	if err := runSteps(steps); err != nil {
		return t, err
	}

	after, err := p.Enabled(ctx)
	if err != nil {
		return t, err
	}
	t.After = after

	if t.After == t.Before {
		return t, ErrCardUnchanged
	}

	return t, nil
}

const (
	paLinkSelector         = "//div[@class='hw-avatar-container default user-avatar-on-hamburger medium']"
	administrationSelector = "//div[contains(text(),'Administration')]"
	adminCardsSelector     = "//div[@class='adminNaveListExpense']/div[1]/ul[1]/li[1]/div[1]/div[1]/div[1]/div[1]"
	assignedCardsSelector  = "//div[normalize-space()='Assigned Cards']"
	selectUserSelector     = "//div[@class='Select-placeholder']"
	selectUserInput        = "//div[contains(@class,'Select-input')]//input"
	downloadButtonSelector = "//button[normalize-space()='Download']"
	exportIconSelector     = "//span[contains(@name,'export')]//i[@id='icon-undefined']"
)

// AdminCards is the Administration > Cards > Assigned Cards screen.
type AdminCards struct {
	Base
}

func NewAdminCards(d Driver, opts ...Option) *AdminCards {
	return &AdminCards{Base: NewBase(d, opts...)}
}

func (p *AdminCards) OpenAssigned(ctx context.Context) error {
	return p.ClickAll(ctx,
		privilegedSelector,
		paLinkSelector,
		administrationSelector,
		adminCardsSelector,
		assignedCardsSelector,
	)
}

func (p *AdminCards) ExportAssigned(ctx context.Context) error {
	if err := p.OpenAssigned(ctx); err != nil {
		return err
	}

	return p.ClickAll(ctx, exportIconSelector, downloadButtonSelector)
}

// BulkAssignDownload downloads the bulk assignment sheet for user.
func (p *AdminCards) BulkAssignDownload(ctx context.Context, user string) error {
	if err := p.OpenAssigned(ctx); err != nil {
		return err
	}

	if err := p.Click(ctx, selectUserSelector); err != nil {
		return err
	}

	if err := p.FillAndEnter(ctx, selectUserInput, user); err != nil {
		return err
	}

	return p.Click(ctx, downloadButtonSelector)
}
