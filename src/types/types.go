package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type TransactionStatus string

const (
	TRANSACTION_PENDING   TransactionStatus = "pending"
	TRANSACTION_APPROVED  TransactionStatus = "approved"
	TRANSACTION_CANCELLED TransactionStatus = "cancelled"
	TRANSACTION_REVERSED  TransactionStatus = "reversed"
)

type InstallmentStatus string

const (
	INSTALLMENT_PENDING   InstallmentStatus = "pending"
	INSTALLMENT_PAID      InstallmentStatus = "paid"
	INSTALLMENT_OVERDUE   InstallmentStatus = "overdue"
	INSTALLMENT_CANCELLED InstallmentStatus = "cancelled"
)

type InvoiceStatus string

const (
	INVOICE_PENDING   InvoiceStatus = "pending"
	INVOICE_PAID      InvoiceStatus = "paid"
	INVOICE_OVERDUE   InvoiceStatus = "overdue"
	INVOICE_CANCELLED InvoiceStatus = "cancelled"
	INVOICE_IN_REVIEW InvoiceStatus = "in_review"
	INVOICE_PARTIAL   InvoiceStatus = "partial"
)

type VoucherStatus string

const (
	VOUCHER_ACTIVE    VoucherStatus = "active"
	VOUCHER_USED      VoucherStatus = "used"
	VOUCHER_EXPIRED   VoucherStatus = "expired"
	VOUCHER_CANCELLED VoucherStatus = "cancelled"
)

type AccountStatus string

const (
	ACCOUNT_ACTIVE   AccountStatus = "active"
	ACCOUNT_BLOCKED  AccountStatus = "blocked"
	ACCOUNT_INACTIVE AccountStatus = "inactive"
)

// ExecutionMode decides whether a batch sweep persists what it computes.
// In Simulate a sweep never calls a mutating entity method; it only folds
// what it would have done into the report.
type ExecutionMode string

const (
	ModeApply    ExecutionMode = "apply"
	ModeSimulate ExecutionMode = "simulate"
)

func (m ExecutionMode) Persist() bool {
	return m == ModeApply
}

func Mode(dryRun bool) ExecutionMode {
	if dryRun {
		return ModeSimulate
	}
	return ModeApply
}

// BatchError is one record that failed inside a sweep. Sweeps never abort
// on these; they collect them so an operator can triage without re-running.
type BatchError struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

type BatchReport struct {
	Job       string        `json:"job"`
	Mode      ExecutionMode `json:"mode"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Errors    []BatchError  `json:"errors,omitempty"`
}

func (r *BatchReport) AddError(id string, reason string) {
	r.Errors = append(r.Errors, BatchError{RecordID: id, Reason: reason})
}

// Debtor is one row of the delinquency top-N.
type Debtor struct {
	InvoiceID uint            `json:"invoice_id"`
	Reference string          `json:"reference"`
	DaysLate  int             `json:"days_late"`
	TotalOwed decimal.Decimal `json:"total_owed"`
	AccountID *uint           `json:"account_id,omitempty"`
	UserID    *uint           `json:"user_id,omitempty"`
}

type RunJobRequestBody struct {
	DryRun bool `json:"dry_run,omitempty"`
	Force  bool `json:"force,omitempty"`
	Mes    int  `json:"mes,omitempty" binding:"omitempty,mes"`
	Ano    int  `json:"ano,omitempty" binding:"omitempty,gte=2000"`
	Limit  int  `json:"limit,omitempty" binding:"omitempty,gte=1"`
}

type RunJobRequestParams struct {
	Name string `uri:"name" binding:"required"`
}
