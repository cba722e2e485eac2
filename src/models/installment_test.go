package models

import (
	"fmt"
	"testing"
	"time"

	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInstallmentsSumsExactly(t *testing.T) {
	value := decimal.RequireFromString("1000.00")
	commission := decimal.RequireFromString("73.37")
	approvedAt := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

	for n := 1; n <= 100; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tr := Transaction{ID: 1, Value: value, Commission: commission, InstallmentCount: n}
			installments := GenerateInstallments(&tr, approvedAt, GenerateInstallmentsOpts{})
			require.Len(t, installments, n)

			sumValue, sumCommission := decimal.Zero, decimal.Zero
			for _, inst := range installments {
				sumValue = sumValue.Add(inst.Value)
				sumCommission = sumCommission.Add(inst.Commission)
			}
			assert.True(t, sumValue.Equal(value), "value sum %s != %s", sumValue, value)
			assert.True(t, sumCommission.Equal(commission), "commission sum %s != %s", sumCommission, commission)
		})
	}
}

func TestGenerateInstallmentsDueDates(t *testing.T) {
	approvedAt := time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC)
	tr := Transaction{ID: 1, Value: decimal.RequireFromString("300.00"), InstallmentCount: 3}

	installments := GenerateInstallments(&tr, approvedAt, GenerateInstallmentsOpts{})
	require.Len(t, installments, 3)

	assert.Equal(t, approvedAt, installments[0].DueDate)
	assert.Equal(t, time.February, installments[1].DueDate.Month())
	assert.Equal(t, 28, installments[1].DueDate.Day())
	assert.Equal(t, time.March, installments[2].DueDate.Month())
	assert.Equal(t, 31, installments[2].DueDate.Day())

	for i, inst := range installments {
		assert.Equal(t, i+1, inst.Number)
	}
}

func TestGenerateInstallmentsDownPaymentPolicy(t *testing.T) {
	approvedAt := time.Now()
	tr := Transaction{ID: 1, Value: decimal.RequireFromString("300.00"), InstallmentCount: 3}

	// default policy: first slice paid at creation
	installments := GenerateInstallments(&tr, approvedAt, GenerateInstallmentsOpts{})
	assert.Equal(t, types.INSTALLMENT_PAID, installments[0].Status)
	assert.NotNil(t, installments[0].PaidAt)
	assert.NotNil(t, installments[0].AmountPaid)
	assert.Equal(t, types.INSTALLMENT_PENDING, installments[1].Status)
	assert.Equal(t, types.INSTALLMENT_PENDING, installments[2].Status)

	// policy overridden per call
	firstPaid := false
	installments = GenerateInstallments(&tr, approvedAt, GenerateInstallmentsOpts{FirstSlicePaid: &firstPaid})
	assert.Equal(t, types.INSTALLMENT_PENDING, installments[0].Status)
	assert.Nil(t, installments[0].PaidAt)
}

func TestGenerateInstallmentsRemainderOnLastSlice(t *testing.T) {
	tr := Transaction{ID: 1, Value: decimal.RequireFromString("100.00"), InstallmentCount: 3}
	installments := GenerateInstallments(&tr, time.Now(), GenerateInstallmentsOpts{})

	assert.Equal(t, "33.33", installments[0].Value.StringFixed(2))
	assert.Equal(t, "33.33", installments[1].Value.StringFixed(2))
	assert.Equal(t, "33.34", installments[2].Value.StringFixed(2))
}

func TestInstallmentLifecycle(t *testing.T) {
	now := time.Now()
	inst := Installment{
		ID:      1,
		Value:   decimal.RequireFromString("100.00"),
		DueDate: now.AddDate(0, 0, -3),
		Status:  types.INSTALLMENT_PENDING,
	}

	assert.True(t, inst.PastDue(now, 0))
	assert.False(t, inst.PastDue(now, 5), "inside the grace window")

	assert.True(t, inst.MarkOverdue())
	assert.Equal(t, types.INSTALLMENT_OVERDUE, inst.Status)
	assert.False(t, inst.MarkOverdue())
	assert.False(t, inst.PastDue(now, 0), "only pending installments go overdue")

	assert.True(t, inst.MarkPaid(now, inst.Value))
	assert.Equal(t, types.INSTALLMENT_PAID, inst.Status)
	assert.NotNil(t, inst.PaidAt)

	paid := inst
	assert.False(t, paid.MarkPaid(now, paid.Value))

	cancelled := Installment{Status: types.INSTALLMENT_PENDING}
	assert.True(t, cancelled.Cancel())
	assert.False(t, cancelled.Cancel())
	assert.False(t, cancelled.MarkPaid(now, decimal.Zero))
}
