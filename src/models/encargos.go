package models

import (
	"time"

	"backoffice/src/types"
	"backoffice/src/utils"

	"github.com/shopspring/decimal"
)

// Encargos is the interest + penalty owed on an overdue receivable at a
// given instant. Always computed from current state and the injected
// clock; only the overdue sweeps ever persist it.
type Encargos struct {
	DaysOverdue int             `json:"days_overdue"`
	Interest    decimal.Decimal `json:"interest"`
	Penalty     decimal.Decimal `json:"penalty"`
	TotalDue    decimal.Decimal `json:"total_due"`
}

// Invoices and installments charge encargos with the same shape but
// different constants. The two policies are deliberately independent; the
// billing team never confirmed they should converge.

// InvoiceEncargosPolicy: simple daily interest plus a flat penalty.
type InvoiceEncargosPolicy struct {
	DailyInterestRate decimal.Decimal
	PenaltyRate       decimal.Decimal
}

// InstallmentEncargosPolicy: monthly interest charged pro rata over a
// 30-day month, plus a flat penalty.
type InstallmentEncargosPolicy struct {
	MonthlyInterestRate decimal.Decimal
	PenaltyRate         decimal.Decimal
}

var (
	// 0.033%/day ≈ 1%/month, 2% flat.
	DefaultInvoiceEncargos = InvoiceEncargosPolicy{
		DailyInterestRate: decimal.RequireFromString("0.00033"),
		PenaltyRate:       decimal.RequireFromString("0.02"),
	}
	// 1%/month pro rata, 2% flat.
	DefaultInstallmentEncargos = InstallmentEncargosPolicy{
		MonthlyInterestRate: decimal.RequireFromString("0.01"),
		PenaltyRate:         decimal.RequireFromString("0.02"),
	}
)

func (p InvoiceEncargosPolicy) Compute(value decimal.Decimal, dueAt time.Time, now time.Time) Encargos {
	days := utils.DaysBetween(dueAt, now)
	interest := utils.Round2(value.Mul(p.DailyInterestRate).Mul(decimal.NewFromInt(int64(days))))
	penalty := utils.Round2(value.Mul(p.PenaltyRate))
	return Encargos{
		DaysOverdue: days,
		Interest:    interest,
		Penalty:     penalty,
		TotalDue:    value.Add(interest).Add(penalty),
	}
}

func (p InstallmentEncargosPolicy) Compute(value decimal.Decimal, dueAt time.Time, now time.Time) Encargos {
	days := utils.DaysBetween(dueAt, now)
	interest := utils.Round2(value.Mul(p.MonthlyInterestRate).Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(30)))
	penalty := utils.Round2(value.Mul(p.PenaltyRate))
	return Encargos{
		DaysOverdue: days,
		Interest:    interest,
		Penalty:     penalty,
		TotalDue:    value.Add(interest).Add(penalty),
	}
}

// Encargos returns the charges owed on the invoice right now. Zero unless
// the invoice is currently overdue.
func (i *Invoice) Encargos(now time.Time) Encargos {
	if i.Status != types.INVOICE_OVERDUE {
		return Encargos{TotalDue: i.Value}
	}
	return DefaultInvoiceEncargos.Compute(i.Value, i.DueAt, now)
}

// Encargos returns the charges owed on the installment right now. Zero
// unless the installment is currently overdue.
func (i *Installment) Encargos(now time.Time) Encargos {
	if i.Status != types.INSTALLMENT_OVERDUE {
		return Encargos{TotalDue: i.Value}
	}
	return DefaultInstallmentEncargos.Compute(i.Value, i.DueDate, now)
}
