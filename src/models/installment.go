package models

import (
	"time"

	"backoffice/src/config"
	"backoffice/src/types"
	"backoffice/src/utils"

	"github.com/shopspring/decimal"
)

type Installment struct {
	ID            uint `gorm:"primarykey" json:"id"`
	TransactionID uint `gorm:"index" json:"transaction_id"`
	Number        int  `json:"number"`

	Value      decimal.Decimal `gorm:"type:decimal(12,2)" json:"value"`
	Commission decimal.Decimal `gorm:"type:decimal(12,2)" json:"commission"`
	DueDate    time.Time       `json:"due_date"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	AmountPaid *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_paid,omitempty"`

	Status   types.InstallmentStatus `gorm:"default:'pending'" json:"status"`
	Interest decimal.Decimal         `gorm:"type:decimal(12,2)" json:"interest"`
	Penalty  decimal.Decimal         `gorm:"type:decimal(12,2)" json:"penalty"`

	Transaction Transaction `gorm:"foreignKey:transaction_id" json:"-"`

	types.Timestamps
}

func (i *Installment) CanBePaid() bool {
	return i.Status == types.INSTALLMENT_PENDING || i.Status == types.INSTALLMENT_OVERDUE
}

func (i *Installment) CanBeCancelled() bool {
	return i.Status != types.INSTALLMENT_CANCELLED
}

// PastDue reports whether a pending installment has exceeded its due date
// plus the grace window.
func (i *Installment) PastDue(now time.Time, toleranceDays int) bool {
	if i.Status != types.INSTALLMENT_PENDING {
		return false
	}
	return i.DueDate.AddDate(0, 0, toleranceDays).Before(now)
}

func (i *Installment) MarkOverdue() bool {
	if i.Status != types.INSTALLMENT_PENDING {
		return false
	}
	i.Status = types.INSTALLMENT_OVERDUE
	return true
}

func (i *Installment) MarkPaid(now time.Time, amount decimal.Decimal) bool {
	if !i.CanBePaid() {
		return false
	}
	i.Status = types.INSTALLMENT_PAID
	i.PaidAt = &now
	i.AmountPaid = &amount
	return true
}

func (i *Installment) Cancel() bool {
	if !i.CanBeCancelled() {
		return false
	}
	i.Status = types.INSTALLMENT_CANCELLED
	return true
}

// GenerateInstallmentsOpts tunes the slicing. FirstSlicePaid overrides the
// configured down-payment policy when non-nil.
type GenerateInstallmentsOpts struct {
	FirstSlicePaid *bool
}

// GenerateInstallments slices an approved transaction into its payment
// plan. Slice values are rounded to the cent and the last slice absorbs
// the rounding remainder, so the sum always matches the trade value
// exactly; commissions follow the same rule. Due dates step one calendar
// month per slice starting at the approval time.
func GenerateInstallments(t *Transaction, approvedAt time.Time, opts GenerateInstallmentsOpts) []Installment {
	n := t.InstallmentCount
	if n < 1 {
		n = 1
	}
	count := decimal.NewFromInt(int64(n))
	slice := utils.Round2(t.Value.Div(count))
	sliceCommission := utils.Round2(t.Commission.Div(count))

	firstPaid := config.DownPaymentPolicy
	if opts.FirstSlicePaid != nil {
		firstPaid = *opts.FirstSlicePaid
	}

	installments := make([]Installment, 0, n)
	for number := 1; number <= n; number++ {
		value := slice
		commission := sliceCommission
		if number == n {
			value = t.Value.Sub(slice.Mul(decimal.NewFromInt(int64(n - 1))))
			commission = t.Commission.Sub(sliceCommission.Mul(decimal.NewFromInt(int64(n - 1))))
		}
		inst := Installment{
			TransactionID: t.ID,
			Number:        number,
			Value:         value,
			Commission:    commission,
			DueDate:       utils.AddMonths(approvedAt, number-1),
			Status:        types.INSTALLMENT_PENDING,
		}
		if number == 1 && firstPaid {
			paidAt := approvedAt
			paid := value
			inst.Status = types.INSTALLMENT_PAID
			inst.PaidAt = &paidAt
			inst.AmountPaid = &paid
		}
		installments = append(installments, inst)
	}
	return installments
}
