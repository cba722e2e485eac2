package models

import (
	"testing"

	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountIsActive(t *testing.T) {
	acc := Account{Status: types.ACCOUNT_ACTIVE}
	assert.True(t, acc.IsActive())

	acc.Blocked = true
	assert.False(t, acc.IsActive())

	inactive := Account{Status: types.ACCOUNT_INACTIVE}
	assert.False(t, inactive.IsActive())
}

func TestAccountNeedsReconciliation(t *testing.T) {
	acc := Account{
		CreditLimit:     decimal.RequireFromString("1000.00"),
		UsedCredit:      decimal.RequireFromString("400.00"),
		AvailableCredit: decimal.RequireFromString("600.00"),
	}
	assert.False(t, acc.NeedsReconciliation())

	// a stale denormalized column is exactly what the reconcile sweep fixes
	acc.UsedCredit = decimal.RequireFromString("500.00")
	assert.True(t, acc.NeedsReconciliation())

	acc.AvailableCredit = acc.CreditLimit.Sub(acc.UsedCredit)
	assert.False(t, acc.NeedsReconciliation())
}

func TestAccountCanDebit(t *testing.T) {
	acc := Account{Balance: decimal.RequireFromString("100.00")}
	assert.True(t, acc.CanDebit(decimal.RequireFromString("100.00")))
	assert.True(t, acc.CanDebit(decimal.RequireFromString("99.99")))
	assert.False(t, acc.CanDebit(decimal.RequireFromString("100.01")))
}
