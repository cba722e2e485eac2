package common

import (
	"testing"
	"time"

	"backoffice/src/models"
	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func billableAccount() models.Account {
	managerID := uint(9)
	return models.Account{
		ID:                 1,
		UserID:             1,
		AccountType:        "business",
		Status:             types.ACCOUNT_ACTIVE,
		DueDay:             10,
		ManagerID:          &managerID,
		MonthlySalesVolume: decimal.RequireFromString("10000.00"),
		Plan:               &models.Plan{ID: 1, MonthlyFee: decimal.RequireFromString("150.00")},
	}
}

func TestComputeMonthlyInvoiceValue(t *testing.T) {
	acc := billableAccount()
	// 150 plan + 10000×5% markup + 10000×2% manager = 850.00
	assert.Equal(t, "850.00", ComputeMonthlyInvoiceValue(&acc).StringFixed(2))
}

func TestComputeMonthlyInvoiceValueNegotiatedRates(t *testing.T) {
	acc := billableAccount()
	markup := decimal.RequireFromString("3.00")
	acc.MarkupRate = &markup
	rate := decimal.RequireFromString("1.50")
	acc.Manager = &models.User{ID: 9, ManagerCommissionRate: &rate}

	// 150 + 300 + 150
	assert.Equal(t, "600.00", ComputeMonthlyInvoiceValue(&acc).StringFixed(2))
}

func TestComputeMonthlyInvoiceValueFloor(t *testing.T) {
	acc := models.Account{
		ID:          2,
		AccountType: "business",
		Plan:        &models.Plan{MonthlyFee: decimal.RequireFromString("50.00")},
	}
	// computed 50.00 sits under the business floor of 99.90
	assert.Equal(t, "99.90", ComputeMonthlyInvoiceValue(&acc).StringFixed(2))

	acc.AccountType = "unknown-type"
	assert.Equal(t, "50.00", ComputeMonthlyInvoiceValue(&acc).StringFixed(2))
}

func TestComputeMonthlyInvoiceValueZeroSkips(t *testing.T) {
	acc := models.Account{ID: 3, AccountType: "business"}
	// nothing to bill: no plan, no volume. Floor must NOT apply.
	assert.True(t, ComputeMonthlyInvoiceValue(&acc).IsZero())
}

func TestTopDebtorsRanking(t *testing.T) {
	now := time.Now()
	mk := func(id uint, value string, daysLate int) models.Invoice {
		return models.Invoice{
			ID:     id,
			Value:  decimal.RequireFromString(value),
			DueAt:  now.AddDate(0, 0, -daysLate),
			Status: types.INVOICE_OVERDUE,
		}
	}
	invoices := []models.Invoice{
		mk(1, "100.00", 5),
		mk(2, "5000.00", 30),
		mk(3, "900.00", 10),
		mk(4, "10.00", 90),
		mk(5, "2500.00", 1),
		mk(6, "300.00", 15),
	}

	top := TopDebtors(invoices, now, 5)
	assert.Len(t, top, 5)
	assert.Equal(t, uint(2), top[0].InvoiceID)
	assert.Equal(t, uint(5), top[1].InvoiceID)
	for i := 1; i < len(top); i++ {
		assert.True(t, top[i-1].TotalOwed.GreaterThanOrEqual(top[i].TotalOwed))
	}

	short := TopDebtors(invoices[:2], now, 5)
	assert.Len(t, short, 2)
}
