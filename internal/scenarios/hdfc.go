package scenarios

import (
	"context"
	"fmt"

	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/suite"
)

func (c catalogue) hdfc() []suite.Case {
	cases := []suite.Case{
		{
			Class:       classEmployeeExp,
			Method:      "TC001_Emp_Expense_Download",
			Description: "Export employee Expenses download",
			Run:         c.exportExpense(false, false),
		},
		{
			Class:       classEmployeeExp,
			Method:      "TC002_Emp_Expense_Download_to_Email",
			Description: "Export employee Expenses to Email",
			Run:         c.exportExpense(false, true),
		},
		{
			Class:       classEmployeeExp,
			Method:      "TC003_Export_History_Success",
			Description: "Export history view and success message",
			Run:         c.exportHistory(false),
		},
		{
			Class:       classEmployeeExp,
			Method:      "TC004_Export_30day_Emp_Expense",
			Description: "Export - Employee Expenses with 30 day filter",
			Run:         c.exportExpense(false, false, pages.FilterLast30Days),
		},
		{
			Class:       classEmployeeExp,
			Method:      "TC005_Export_with_Txn-type_filter",
			Description: "Export - With Card transaction type filter",
			Run:         c.exportExpense(false, false, pages.FilterCardTransaction),
		},
		{
			Class:       classEmployeeExp,
			Method:      "TC006_Export_with_walletType_filter",
			Description: "Export - With Wallet type filter",
			Run:         c.exportExpense(false, false, pages.FilterImprest),
		},
	}

	cases = append(cases, c.passbook(classEmployeeFin, false, 7, "Passbook - ")...)
	cases = append(cases, c.passbook(classPrivFinance, true, 46, "")...)

	return append(cases, suite.Case{
		Class:       classAdminCards,
		Method:      "TC052_Export_Assigned_Cards",
		Description: "Export assigned cards",
		Run:         c.exportAssignedCards,
	})
}

// passbook registers the six statement downloads of a finance class, test
// ids counting up from first.
func (c catalogue) passbook(class string, privileged bool, first int, prefix string) []suite.Case {
	downloads := []struct {
		method      string
		description string
		kind        pages.Statement
		lastYear    bool
	}{
		{"Passbook_download_pdf", "Download PDF", pages.StatementPDF, false},
		{"Passbook_Download_Excel", "Download Excel", pages.StatementExcel, false},
		{"Passbook_balConfirmation_certi", "Balance Confirmation Certificate - export", pages.StatementBCC, false},
		{"Passbook_download_pdf_1Year_filter", "1 Year filter - Download PDF", pages.StatementPDF, true},
		{"Passbook_Download_Excel_1Year_filter", "1 Year filter - Download Excel", pages.StatementExcel, true},
		{"Passbook_balConfirmation_certi_1Year_filter", "1 Year - Balance Confirmation Certificate - export", pages.StatementBCC, true},
	}

	cases := make([]suite.Case, 0, len(downloads))
	for i, d := range downloads {
		d := d
		cases = append(cases, suite.Case{
			Class:       class,
			Method:      fmt.Sprintf("TC%03d_%s", first+i, d.method),
			Description: prefix + d.description,
			Run: func(ctx context.Context, env suite.Env) error {
				p := pages.NewFinance(c.driver(env), c.opts...)
				if privileged {
					p = pages.NewPrivilegedFinance(c.driver(env), c.opts...)
				}

				if err := p.Download(ctx, d.kind, d.lastYear); err != nil {
					return err
				}

				_, err := c.confirm(ctx, env)

				return err
			},
		})
	}

	return cases
}
