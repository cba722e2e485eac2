package models

import (
	"time"

	"backoffice/src/types"

	"github.com/shopspring/decimal"
)

// Invoice is a cobrança: a billable amount owed by a user or account,
// generated monthly from billing inputs or ad hoc from a transaction.
type Invoice struct {
	ID uint `gorm:"primarykey" json:"id"`

	UserID        *uint `gorm:"index" json:"user_id,omitempty"`
	AccountID     *uint `gorm:"index" json:"account_id,omitempty"`
	SubAccountID  *uint `json:"sub_account_id,omitempty"`
	TransactionID *uint `json:"transaction_id,omitempty"`
	ManagerID     *uint `json:"manager_id,omitempty"`

	Value      decimal.Decimal     `gorm:"type:decimal(12,2)" json:"value"`
	Reference  string              `gorm:"index" json:"reference"`
	DueAt      time.Time           `json:"due_at"`
	Status     types.InvoiceStatus `gorm:"default:'pending'" json:"status"`
	PaidAt     *time.Time          `json:"paid_at,omitempty"`
	AmountPaid *decimal.Decimal    `gorm:"type:decimal(12,2)" json:"amount_paid,omitempty"`

	User        *User        `gorm:"foreignKey:user_id" json:"-"`
	Account     *Account     `gorm:"foreignKey:account_id" json:"-"`
	SubAccount  *Account     `gorm:"foreignKey:sub_account_id" json:"-"`
	Transaction *Transaction `gorm:"foreignKey:transaction_id" json:"-"`
	Manager     *User        `gorm:"foreignKey:manager_id" json:"-"`

	types.Timestamps
}

func (i *Invoice) CanBePaid() bool {
	switch i.Status {
	case types.INVOICE_PENDING, types.INVOICE_OVERDUE, types.INVOICE_IN_REVIEW, types.INVOICE_PARTIAL:
		return true
	}
	return false
}

func (i *Invoice) CanBeCancelled() bool {
	return i.Status != types.INVOICE_PAID && i.Status != types.INVOICE_CANCELLED
}

// PastDue reports whether the invoice has exceeded its due timestamp plus
// the grace window, counting only the sweep-eligible statuses.
func (i *Invoice) PastDue(now time.Time, toleranceDays int, includeInReview bool) bool {
	switch i.Status {
	case types.INVOICE_PENDING:
	case types.INVOICE_IN_REVIEW:
		if !includeInReview {
			return false
		}
	default:
		return false
	}
	return i.DueAt.AddDate(0, 0, toleranceDays).Before(now)
}

func (i *Invoice) MarkOverdue() bool {
	if i.Status != types.INVOICE_PENDING && i.Status != types.INVOICE_IN_REVIEW {
		return false
	}
	i.Status = types.INVOICE_OVERDUE
	return true
}

func (i *Invoice) MarkPaid(now time.Time, amount decimal.Decimal) bool {
	if !i.CanBePaid() {
		return false
	}
	i.Status = types.INVOICE_PAID
	i.PaidAt = &now
	i.AmountPaid = &amount
	return true
}

func (i *Invoice) Cancel() bool {
	if !i.CanBeCancelled() {
		return false
	}
	i.Status = types.INVOICE_CANCELLED
	return true
}

// Validate returns the referential violations of an invoice. Admin edits
// bypass the entity guards, so the consistency sweep re-checks these.
func (i *Invoice) Validate() []string {
	var violations []string
	if i.UserID == nil && i.AccountID == nil && i.TransactionID == nil {
		violations = append(violations, "invoice must reference a user, account or transaction")
	}
	if i.SubAccountID != nil && i.AccountID == nil {
		violations = append(violations, "sub-account requires a parent account")
	}
	if !i.CreatedAt.IsZero() && i.DueAt.Before(i.CreatedAt) {
		violations = append(violations, "due date precedes creation")
	}
	return violations
}

// IntegrityViolations flags states only a direct edit can produce, such as
// an invoice labelled overdue while its due date is still in the future.
func (i *Invoice) IntegrityViolations(now time.Time) []string {
	var violations []string
	if i.Status == types.INVOICE_OVERDUE && i.DueAt.After(now) {
		violations = append(violations, "status overdue but due date not reached")
	}
	return violations
}
