package pages

import (
	"context"
	"fmt"
)

// Statement is a passbook export format.
type Statement int

const (
	StatementPDF Statement = iota + 1
	StatementExcel
	StatementBCC
)

func (s Statement) String() string {
	switch s {
	case StatementPDF:
		return "pdf"
	case StatementExcel:
		return "excel"
	case StatementBCC:
		return "balance confirmation certificate"
	default:
		return "unknown"
	}
}

const (
	financesLinkSelector = "//div[normalize-space()='Finances']"
	passbookLinkSelector = "//div[@class='HPGrid HPGrid-container-row HPGrid-container-flex-start HPGrid-container-align-center']//div[contains(text(),'Passbook')]"
	exportButtonSelector = "//button[normalize-space()='Export']"
	popupIconSelector    = "//i[@id='icon-popup-icon']"
	exportOptionSelector = "//div[contains(text(),'Export')]"
	bccOptionSelector    = "//div[contains(text(),'Download BCC')]"
	walletsSelector      = "//input[@placeholder='Wallets']"
	selectAllSelector    = "//div[@aria-label='Select All']"
	backwardSelector     = "//span[@name='backward']//i[@id='icon-undefined']"
	daySelector          = "//span[contains(text(),'19')]"
	modifyButtonSelector = "//button[@id='export-button']"

	employeeCalendarSelector   = "//div[@class='userDashboard']/div[contains(@class,'HPGrid-container-align-flex-start')]/div[2]//span[1]/i[1]"
	privilegedCalendarSelector = "//div[contains(@class,'priv-passbook passbook-wrapper')]//div[1]//div[1]//div[1]//div[1]//span[1]//i[1]"
)

// Finance is the passbook screen under Finances.
type Finance struct {
	Base
	privileged bool
}

func NewFinance(d Driver, opts ...Option) *Finance {
	return &Finance{Base: NewBase(d, opts...)}
}

func NewPrivilegedFinance(d Driver, opts ...Option) *Finance {
	return &Finance{Base: NewBase(d, opts...), privileged: true}
}

func (p *Finance) Open(ctx context.Context) error {
	p.logger.Infof("Clicking on Finances link")

	if p.privileged {
		if err := p.Click(ctx, privilegedSelector); err != nil {
			return err
		}
	}

	for _, sel := range []string{financesLinkSelector, passbookLinkSelector} {
		if err := p.WaitForLoad(ctx); err != nil {
			return err
		}

		if err := p.ClickWithFallback(ctx, sel); err != nil {
			return err
		}
	}

	return p.WaitForLoad(ctx)
}

// LastYear narrows the passbook to the past year through the date picker.
func (p *Finance) LastYear(ctx context.Context) error {
	calendar := employeeCalendarSelector
	if p.privileged {
		calendar = privilegedCalendarSelector
	}

	return p.ClickAll(ctx, calendar, backwardSelector, daySelector, modifyButtonSelector)
}

// Download exports the passbook in the given format, optionally limited to
// the past year.
func (p *Finance) Download(ctx context.Context, kind Statement, lastYear bool) error {
	p.logger.Infof("Starting Passbook %s download process", kind)

	if err := p.Open(ctx); err != nil {
		return err
	}

	if lastYear {
		if err := p.LastYear(ctx); err != nil {
			return err
		}
	}

	var err error
	switch kind {
	case StatementPDF:
		err = p.ClickAll(ctx, downloadIconSel, exportButtonSelector)
	case StatementExcel:
		err = p.ClickAll(ctx, popupIconSelector, exportOptionSelector, exportButtonSelector)
	case StatementBCC:
		err = p.ClickAll(ctx, popupIconSelector, bccOptionSelector, walletsSelector, selectAllSelector, downloadButtonSelector)
	default:
		err = fmt.Errorf("unsupported statement %d", kind)
	}

	if err != nil {
		return err
	}

	p.logger.Infof("Completed Passbook %s download process", kind)

	return nil
}
