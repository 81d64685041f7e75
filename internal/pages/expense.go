package pages

import (
	"context"
	"fmt"
)

type ExpenseFilter string

const (
	FilterLast30Days       ExpenseFilter = "//input[@id='dd-date-range-metaid-value']"
	FilterCardTransaction  ExpenseFilter = "//label[@aria-label='Card Transaction']//span[@class='height-16 width-16']"
	FilterWalletLoadCredit ExpenseFilter = "//label[@aria-label='Wallet Load Credit']//span[@class='height-16 width-16']"
	FilterImprest          ExpenseFilter = "//label[@aria-label='Imprest']//span[@class='height-16 width-16']"
)

const (
	expensesLinkSelector  = "//div[normalize-space()='Expenses']"
	downloadTextSelector  = "//div[contains(text(),'Download')]"
	expenseReportSelector = "//div[contains(text(),'Download Expense Report')]"
	exportHistorySelector = "//div[contains(text(),'View Export History')]"
	applyFiltersSelector  = "//button[normalize-space()='Apply Filters']"
	sideFilterSelector    = "//div[@class='SearchBarWrapper searchBar wrapperDiv']"
)

// Expense is the expense list with its export dialog. The privileged view
// is reached through the admin switch and labels its download entry
// differently.
type Expense struct {
	Base
	privileged bool
}

func NewExpense(d Driver, opts ...Option) *Expense {
	return &Expense{Base: NewBase(d, opts...)}
}

func NewPrivilegedExpense(d Driver, opts ...Option) *Expense {
	return &Expense{Base: NewBase(d, opts...), privileged: true}
}

func (p *Expense) Open(ctx context.Context) error {
	if p.privileged {
		if err := p.Click(ctx, privilegedSelector); err != nil {
			return err
		}
	}

	if err := p.WaitForLoad(ctx); err != nil {
		return err
	}

	if err := p.ClickWithFallback(ctx, expensesLinkSelector); err != nil {
		return fmt.Errorf("expenses link: %w", err)
	}

	return p.WaitForLoad(ctx)
}

// Export downloads the expense report with filters applied. A non-empty
// email sends the export there instead of downloading it. The toast text
// is returned.
func (p *Expense) Export(ctx context.Context, email string, filters ...ExpenseFilter) (string, error) {
	if err := p.Open(ctx); err != nil {
		return "", err
	}

	if err := p.applyFilters(ctx, filters); err != nil {
		return "", err
	}

	entry := downloadTextSelector
	if p.privileged {
		entry = expenseReportSelector
	}

	if err := p.ClickAll(ctx, downloadIconSel, entry); err != nil {
		return "", err
	}

	if email != "" {
		if err := p.FillAndEnter(ctx, emailInputSelector, email); err != nil {
			return "", err
		}
	}

	if err := p.Click(ctx, downloadButtonSelector); err != nil {
		return "", err
	}

	return p.ExpectToast(ctx)
}

func (p *Expense) ExportHistory(ctx context.Context) error {
	if err := p.Open(ctx); err != nil {
		return err
	}

	if err := p.ClickAll(ctx, downloadIconSel, exportHistorySelector); err != nil {
		return err
	}

	return p.WaitForLoad(ctx)
}

func (p *Expense) applyFilters(ctx context.Context, filters []ExpenseFilter) error {
	needApply := false

	for _, f := range filters {
		if f == FilterLast30Days {
			if err := p.Click(ctx, string(f)); err != nil {
				return err
			}
			continue
		}

		if !needApply {
			if err := p.Driver().ScrollIntoView(ctx, sideFilterSelector); err != nil {
				p.logger.Debugf("Scroll to side filter failed: %v", err)
			}
		}

		if err := p.Click(ctx, string(f)); err != nil {
			return err
		}
		needApply = true
	}

	if !needApply {
		return nil
	}

	if err := p.Click(ctx, applyFiltersSelector); err != nil {
		return err
	}

	return p.WaitForLoad(ctx)
}
