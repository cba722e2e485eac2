package models

import (
	"testing"
	"time"

	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceEncargosTenDaysLate(t *testing.T) {
	now := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	inv := Invoice{
		Value:  decimal.RequireFromString("1000.00"),
		DueAt:  now.AddDate(0, 0, -10),
		Status: types.INVOICE_OVERDUE,
	}

	enc := inv.Encargos(now)
	assert.Equal(t, 10, enc.DaysOverdue)
	assert.Equal(t, "3.30", enc.Interest.StringFixed(2))
	assert.Equal(t, "20.00", enc.Penalty.StringFixed(2))
	assert.Equal(t, "1023.30", enc.TotalDue.StringFixed(2))
}

func TestInvoiceEncargosZeroWhenNotOverdue(t *testing.T) {
	now := time.Now()
	for _, status := range []types.InvoiceStatus{
		types.INVOICE_PENDING, types.INVOICE_PAID, types.INVOICE_CANCELLED, types.INVOICE_IN_REVIEW, types.INVOICE_PARTIAL,
	} {
		inv := Invoice{Value: decimal.RequireFromString("1000.00"), DueAt: now.AddDate(0, 0, -30), Status: status}
		enc := inv.Encargos(now)
		assert.True(t, enc.Interest.IsZero(), string(status))
		assert.True(t, enc.Penalty.IsZero(), string(status))
		assert.True(t, enc.TotalDue.Equal(inv.Value), string(status))
	}
}

func TestInvoiceEncargosPositiveForAnyLateDay(t *testing.T) {
	now := time.Now()
	for days := 1; days <= 120; days++ {
		inv := Invoice{
			Value:  decimal.RequireFromString("100.00"),
			DueAt:  now.AddDate(0, 0, -days),
			Status: types.INVOICE_OVERDUE,
		}
		enc := inv.Encargos(now)
		assert.True(t, enc.Interest.GreaterThan(decimal.Zero), "days=%d", days)
	}
}

func TestInstallmentEncargosThirtyDaysLate(t *testing.T) {
	now := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	inst := Installment{
		Value:   decimal.RequireFromString("200.00"),
		DueDate: now.AddDate(0, 0, -30),
		Status:  types.INSTALLMENT_OVERDUE,
	}

	enc := inst.Encargos(now)
	assert.Equal(t, 30, enc.DaysOverdue)
	// 1% per 30-day month, full month late
	assert.Equal(t, "2.00", enc.Interest.StringFixed(2))
	assert.Equal(t, "4.00", enc.Penalty.StringFixed(2))
	assert.Equal(t, "206.00", enc.TotalDue.StringFixed(2))
}

func TestInstallmentEncargosZeroWhenNotOverdue(t *testing.T) {
	now := time.Now()
	inst := Installment{
		Value:   decimal.RequireFromString("200.00"),
		DueDate: now.AddDate(0, 0, -30),
		Status:  types.INSTALLMENT_PENDING,
	}
	enc := inst.Encargos(now)
	assert.True(t, enc.Interest.IsZero())
	assert.True(t, enc.Penalty.IsZero())
}

// Re-running a sweep must not compound charges: encargos derive from the
// due date and the clock, never from previously persisted values.
func TestEncargosAreIdempotentOnRead(t *testing.T) {
	now := time.Now()
	inst := Installment{
		Value:   decimal.RequireFromString("150.00"),
		DueDate: now.AddDate(0, 0, -12),
		Status:  types.INSTALLMENT_OVERDUE,
	}

	first := inst.Encargos(now)
	inst.Interest = first.Interest
	inst.Penalty = first.Penalty
	second := inst.Encargos(now)

	assert.True(t, first.Interest.Equal(second.Interest))
	assert.True(t, first.Penalty.Equal(second.Penalty))
}
