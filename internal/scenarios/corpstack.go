package scenarios

import (
	"context"

	"github.com/robotomize/corpsuite/internal/pages"
	"github.com/robotomize/corpsuite/internal/suite"
)

const (
	classEmployeeCards = "Employee.CardsTest"
	classEmployeeExp   = "Employee.ExpenseTest"
	classEmployeeFin   = "Employee.FinanceTest"
	classPrivExpense   = "Privileged.ExpenseTest"
	classPrivFinance   = "Privileged.FinanceTest"
	classPrivUsers     = "Privileged.UsersTest"
	classAdminCards    = "Administration.CardsTest"

	downloadInitiated = "Download initiated"
)

func (c catalogue) corpstack() []suite.Case {
	return []suite.Case{
		{
			Class:       classEmployeeCards,
			Method:      "TC013_CardAction_Enable_Disable",
			Description: "Card actions Enable and Disable",
			Run:         c.toggleCard,
		},
		{
			Class:       classPrivExpense,
			Method:      "TC043_Emp_Expense_Download_Local",
			Description: "Export Expenses Default download",
			Run:         c.exportExpense(true, false),
		},
		{
			Class:       classPrivExpense,
			Method:      "TC044_Emp_Expense_Download_Email",
			Description: "Export Expenses Email attachment",
			Run:         c.exportExpense(true, true),
		},
		{
			Class:       classPrivExpense,
			Method:      "TC045_Export_History_Success",
			Description: "Export history view and success message",
			Run:         c.exportHistory(true),
		},
		{
			Class:       classPrivUsers,
			Method:      "TC026_Export_wallet_limi_History_email",
			Description: "Export Wallet Limit History",
			Run: func(ctx context.Context, env suite.Env) error {
				return c.users(env).ExportLimitHistory(ctx)
			},
		},
		{
			Class:       classPrivUsers,
			Method:      "TC027_Bulk_Load_Wallet_S3_Download",
			Description: "Load Wallet using Excel",
			Run: func(ctx context.Context, env suite.Env) error {
				if err := c.users(env).BulkSheet(ctx, pages.BulkLoadWallet); err != nil {
					return err
				}
				return c.confirmContains(ctx, env, downloadInitiated)
			},
		},
		{
			Class:       classPrivUsers,
			Method:      "TC029_Bulk_Withdraw_Wallet",
			Description: "Withdraw Wallet using Excel",
			Run: func(ctx context.Context, env suite.Env) error {
				if err := c.users(env).BulkSheet(ctx, pages.BulkWithdrawWallet); err != nil {
					return err
				}
				_, err := c.confirm(ctx, env)
				return err
			},
		},
		{
			Class:       classPrivUsers,
			Method:      "TC030_Export_Users_Local",
			Description: "Default - Export users",
			Run:         c.exportUsers(false),
		},
		{
			Class:       classPrivUsers,
			Method:      "TC031_Export_Users_Email",
			Description: "Email - Export users",
			Run:         c.exportUsers(true),
		},
		{
			Class:       classPrivUsers,
			Method:      "TC032_Self_User_Wallet_Load",
			Description: "Self/ Single user Wallet load",
			Run:         c.wallet(pages.SelfWalletLoad),
		},
		{
			Class:       classPrivUsers,
			Method:      "TC033_Self_User_Wallet_Withdraw",
			Description: "Self/Single user Wallet Unload",
			Run:         c.wallet(pages.SelfWalletWithdraw),
		},
		{
			Class:       classPrivUsers,
			Method:      "TC034_Update_limit_download__attachment",
			Description: "Update Wallet Limits using Excel",
			Run: func(ctx context.Context, env suite.Env) error {
				return c.users(env).BulkSheet(ctx, pages.BulkUpdateLimits)
			},
		},
		{
			Class:       classPrivUsers,
			Method:      "TC036_Set_user_wallet_limit",
			Description: "Set wallet limit",
			Run: func(ctx context.Context, env suite.Env) error {
				count := env.Param(ParamWalletLimit, defaultWalletLimit)
				env.Logf("Setting transaction count limit to %s", count)
				return c.users(env).SetLimit(ctx, count)
			},
		},
		{
			Class:       classPrivUsers,
			Method:      "TC037_Export_user_with_userStatus_filter",
			Description: "Search by - User status - Export",
			Run: func(ctx context.Context, env suite.Env) error {
				return c.users(env).Export(ctx, "", true)
			},
		},
		{
			Class:       classAdminCards,
			Method:      "TC052_Export_Assigned_Cards",
			Description: "Export assigned cards",
			Run:         c.exportAssignedCards,
		},
	}
}

func (c catalogue) users(env suite.Env) *pages.Users {
	return pages.NewUsers(c.driver(env), c.opts...)
}

func (c catalogue) toggleCard(ctx context.Context, env suite.Env) error {
	p := pages.NewCards(c.driver(env), c.opts...)
	if err := p.Open(ctx); err != nil {
		return err
	}
	env.Logf("Clicked on Cards & Wallets")

	comment := env.Param(ParamCardComment, defaultCardComment)
	toggle, err := p.ToggleStatus(ctx, comment, env.Param(ParamWalletPassword, defaultWalletPassword))
	if err != nil {
		return err
	}

	env.Logf("Initial card status: %s", cardStatus(toggle.Before))
	env.Logf("Entered comment: %s", comment)
	env.Logf("Toast message: %s", toggle.Toast)
	env.Logf("Final card status: %s", cardStatus(toggle.After))

	return nil
}

func cardStatus(enabled bool) string {
	if enabled {
		return "Enabled"
	}

	return "Disabled"
}

func (c catalogue) exportExpense(privileged, toEmail bool, filters ...pages.ExpenseFilter) func(context.Context, suite.Env) error {
	return func(ctx context.Context, env suite.Env) error {
		var email string
		if toEmail {
			var err error
			if email, err = testEmail(env); err != nil {
				return err
			}
		}

		p := pages.NewExpense(c.driver(env), c.opts...)
		if privileged {
			p = pages.NewPrivilegedExpense(c.driver(env), c.opts...)
		}

		toast, err := p.Export(ctx, email, filters...)
		if err != nil {
			return err
		}

		env.Logf("Toast message: %s", toast)

		return nil
	}
}

func (c catalogue) exportHistory(privileged bool) func(context.Context, suite.Env) error {
	return func(ctx context.Context, env suite.Env) error {
		p := pages.NewExpense(c.driver(env), c.opts...)
		if privileged {
			p = pages.NewPrivilegedExpense(c.driver(env), c.opts...)
		}

		if err := p.ExportHistory(ctx); err != nil {
			return err
		}

		_, err := c.confirm(ctx, env)

		return err
	}
}

func (c catalogue) exportUsers(toEmail bool) func(context.Context, suite.Env) error {
	return func(ctx context.Context, env suite.Env) error {
		var email string
		if toEmail {
			var err error
			if email, err = testEmail(env); err != nil {
				return err
			}
		}

		if err := c.users(env).Export(ctx, email, false); err != nil {
			return err
		}

		_, err := c.confirm(ctx, env)

		return err
	}
}

func (c catalogue) wallet(action pages.WalletAction) func(context.Context, suite.Env) error {
	return func(ctx context.Context, env suite.Env) error {
		err := c.users(env).Wallet(ctx, action,
			env.Param(ParamWalletAmount, defaultWalletAmount),
			env.Param(ParamWalletPassword, defaultWalletPassword),
			env.Param(ParamWalletComment, defaultWalletComment),
		)
		if err != nil {
			return err
		}

		_, err = c.confirm(ctx, env)

		return err
	}
}

func (c catalogue) exportAssignedCards(ctx context.Context, env suite.Env) error {
	if err := pages.NewAdminCards(c.driver(env), c.opts...).ExportAssigned(ctx); err != nil {
		return err
	}

	_, err := c.confirm(ctx, env)

	return err
}
