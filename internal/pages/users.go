package pages

import (
	"context"
	"fmt"
)

// BulkAction is an Excel driven wallet operation from the More menu.
type BulkAction string

const (
	BulkLoadWallet     BulkAction = "//div[contains(text(),'Load Wallet using Excel')]"
	BulkWithdrawWallet BulkAction = "//div[contains(text(),'Withdraw Wallet using Excel')]"
	BulkUpdateLimits   BulkAction = "//div[contains(text(),'Update Wallet Limits using Excel')]"
)

// WalletAction is a single user wallet operation from the More menu.
type WalletAction string

const (
	SelfWalletLoad     WalletAction = "//div[contains(text(),'Self Wallet Load')]"
	SelfWalletWithdraw WalletAction = "//div[contains(text(),'Self Wallet Withdraw')]"
)

const (
	usersLinkSelector       = "//div[normalize-space()='Users']"
	moreButtonSelector      = "//button[@id='card-btn-popup']"
	limitHistorySelector    = "//div[contains(text(),'Export Wallet Limit History')]"
	usersDownloadSelector   = "//button[contains(text(),'Download')]"
	userInformationSelector = "//div[@class='file-p']//div[1]"
	walletPasswordSelector  = "//input[@id='Password']"
	walletCommentSelector   = "//input[@id='comment']"
	walletAmountSelector    = "//input[@id='amount']"
	submitButtonSelector    = "//button[normalize-space()='Submit']"
	userPopupSelector       = "//i[@id='icon-icon-popup-0']"
	setLimitSelector        = "//div[contains(text(),'Set Limit')]"
	editLimitSelector       = "//button[normalize-space()='Edit Limit']"
	limitCountSelector      = "//div[1]//div[1]//div[3]//div[1]//div[2]//div[3]//div[1]//div[1]//div[1]//div[1]//div[1]//div[1]//input[1]"
	saveButtonSelector      = "//button[contains(@type,'button')]"
	activeStatusSelector    = "//label[@aria-label='Active']//span[@class='height-16 width-16']"
)

// Users is the privileged user directory.
type Users struct {
	Base
}

func NewUsers(d Driver, opts ...Option) *Users {
	return &Users{Base: NewBase(d, opts...)}
}

func (p *Users) Open(ctx context.Context) error {
	if err := p.ClickAll(ctx, privilegedSelector, usersLinkSelector); err != nil {
		return err
	}

	return p.WaitForLoad(ctx)
}

func (p *Users) ExportLimitHistory(ctx context.Context) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	return p.ClickAll(ctx, moreButtonSelector, limitHistorySelector, usersDownloadSelector)
}

// BulkSheet downloads the user information sheet for a bulk wallet action.
func (p *Users) BulkSheet(ctx context.Context, action BulkAction) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	return p.ClickAll(ctx, moreButtonSelector, string(action), userInformationSelector)
}

// Export downloads the user list. A non-empty email mails it instead and
// activeOnly applies the Active status filter first.
func (p *Users) Export(ctx context.Context, email string, activeOnly bool) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	if activeOnly {
		if err := p.ClickAll(ctx, activeStatusSelector, applyFiltersSelector); err != nil {
			return err
		}
		if err := p.WaitForLoad(ctx); err != nil {
			return err
		}
	}

	if err := p.Click(ctx, downloadIconSel); err != nil {
		return err
	}

	if email != "" {
		if err := p.FillAndEnter(ctx, emailInputSelector, email); err != nil {
			return err
		}
	}

	return p.Click(ctx, usersDownloadSelector)
}

// Wallet runs a self wallet load or withdraw. amount is only asked for by
// the withdraw form and is skipped when empty.
func (p *Users) Wallet(ctx context.Context, action WalletAction, amount, password, comment string) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	if err := p.ClickAll(ctx, moreButtonSelector, string(action)); err != nil {
		return err
	}

	if amount != "" {
		if err := p.Fill(ctx, walletAmountSelector, amount); err != nil {
			return err
		}
	}

	if err := p.Fill(ctx, walletPasswordSelector, password); err != nil {
		return err
	}

	if err := p.Fill(ctx, walletCommentSelector, comment); err != nil {
		return err
	}

	if err := p.Click(ctx, submitButtonSelector); err != nil {
		return fmt.Errorf("submit wallet form: %w", err)
	}

	return nil
}

// SetLimit sets the transaction count limit of the first user in the list.
func (p *Users) SetLimit(ctx context.Context, count string) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	if err := p.ClickAll(ctx, userPopupSelector, setLimitSelector, editLimitSelector); err != nil {
		return err
	}

	if err := p.Fill(ctx, limitCountSelector, count); err != nil {
		return err
	}

	return p.Click(ctx, saveButtonSelector)
}
