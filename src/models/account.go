package models

import (
	"backoffice/src/types"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	UserID      uint                `gorm:"index" json:"user_id"`
	AccountType string              `json:"account_type"`
	Status      types.AccountStatus `gorm:"default:'active'" json:"status"`
	Blocked     bool                `gorm:"default:false" json:"blocked"`

	Balance         decimal.Decimal `gorm:"type:decimal(14,2)" json:"balance"`
	CreditLimit     decimal.Decimal `gorm:"type:decimal(14,2)" json:"credit_limit"`
	UsedCredit      decimal.Decimal `gorm:"type:decimal(14,2)" json:"used_credit"`
	AvailableCredit decimal.Decimal `gorm:"type:decimal(14,2)" json:"available_credit"`

	// Billing inputs read by the monthly invoice generator.
	PlanID             *uint            `json:"plan_id,omitempty"`
	ManagerID          *uint            `json:"manager_id,omitempty"`
	ParentAccountID    *uint            `json:"parent_account_id,omitempty"`
	DueDay             int              `gorm:"default:10" json:"due_day"`
	MarkupRate         *decimal.Decimal `gorm:"type:decimal(5,2)" json:"markup_rate,omitempty"`
	MonthlySalesVolume decimal.Decimal  `gorm:"type:decimal(14,2)" json:"monthly_sales_volume"`
	AutoDebit          bool             `gorm:"default:false" json:"auto_debit"`

	User    User     `gorm:"foreignKey:user_id" json:"-"`
	Plan    *Plan    `gorm:"foreignKey:plan_id" json:"plan,omitempty"`
	Manager *User    `gorm:"foreignKey:manager_id" json:"-"`
	Parent  *Account `gorm:"foreignKey:parent_account_id" json:"-"`

	types.Timestamps
}

func (a *Account) IsActive() bool {
	return a.Status == types.ACCOUNT_ACTIVE && !a.Blocked
}

// NeedsReconciliation reports whether the denormalized available_credit
// column has drifted from credit_limit − used_credit.
func (a *Account) NeedsReconciliation() bool {
	return !a.AvailableCredit.Equal(a.CreditLimit.Sub(a.UsedCredit))
}

// CanDebit reports whether the balance covers value. The actual debit is
// applied as an atomic conditional UPDATE; this predicate only pre-filters.
func (a *Account) CanDebit(value decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(value)
}
