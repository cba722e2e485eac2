package models

import (
	"testing"
	"time"

	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewVoucher(t *testing.T) {
	tr := Transaction{ID: 7}
	expires := time.Now().AddDate(0, 0, 90)
	v := NewVoucher(&tr, decimal.RequireFromString("50.00"), expires)

	assert.Equal(t, uint(7), v.TransactionID)
	assert.NotEmpty(t, v.Code)
	assert.Equal(t, types.VOUCHER_ACTIVE, v.Status)

	other := NewVoucher(&tr, decimal.RequireFromString("50.00"), expires)
	assert.NotEqual(t, v.Code, other.Code)
}

func TestVoucherUse(t *testing.T) {
	now := time.Now()
	v := Voucher{Status: types.VOUCHER_ACTIVE, ExpiresAt: now.AddDate(0, 0, 10)}

	assert.True(t, v.CanBeUsed(now))
	assert.True(t, v.Use(now, 42))
	assert.Equal(t, types.VOUCHER_USED, v.Status)
	assert.Equal(t, uint(42), *v.UsedByID)
	assert.False(t, v.Use(now, 42))

	expired := Voucher{Status: types.VOUCHER_ACTIVE, ExpiresAt: now.AddDate(0, 0, -1)}
	assert.False(t, expired.CanBeUsed(now))
	assert.False(t, expired.Use(now, 42))
}

func TestVoucherExpire(t *testing.T) {
	now := time.Now()

	v := Voucher{Status: types.VOUCHER_ACTIVE, ExpiresAt: now.AddDate(0, 0, -1)}
	assert.True(t, v.Expire(now))
	assert.Equal(t, types.VOUCHER_EXPIRED, v.Status)

	notYet := Voucher{Status: types.VOUCHER_ACTIVE, ExpiresAt: now.AddDate(0, 0, 3)}
	assert.False(t, notYet.Expire(now))
	assert.True(t, notYet.ExpiresWithin(now, 7))
	assert.False(t, notYet.ExpiresWithin(now, 2))
}

func TestVoucherCancelAndReactivate(t *testing.T) {
	now := time.Now()
	v := Voucher{Status: types.VOUCHER_ACTIVE, ExpiresAt: now.AddDate(0, 0, 10)}

	assert.True(t, v.Use(now, 9))
	assert.False(t, v.CanBeCancelled(), "used vouchers stay used")

	expired := Voucher{Status: types.VOUCHER_EXPIRED}
	assert.True(t, expired.Cancel(now, "stale"))
	assert.Equal(t, types.VOUCHER_CANCELLED, expired.Status)
	assert.NotNil(t, expired.CancelledAt)
	assert.Contains(t, expired.Notes, "stale")

	assert.True(t, expired.Reactivate(now, "issued by mistake"))
	assert.Equal(t, types.VOUCHER_ACTIVE, expired.Status)
	assert.Nil(t, expired.CancelledAt)
	assert.Nil(t, expired.UsedAt)
	assert.Nil(t, expired.UsedByID)

	assert.False(t, expired.Reactivate(now, "twice"))
}
