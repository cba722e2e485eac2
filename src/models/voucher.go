package models

import (
	"fmt"
	"time"

	"backoffice/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Voucher struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	TransactionID uint   `gorm:"index" json:"transaction_id"`
	Code          string `gorm:"uniqueIndex" json:"code"`

	Value       decimal.Decimal     `gorm:"type:decimal(12,2)" json:"value"`
	ExpiresAt   time.Time           `json:"expires_at"`
	Status      types.VoucherStatus `gorm:"default:'active'" json:"status"`
	UsedAt      *time.Time          `json:"used_at,omitempty"`
	UsedByID    *uint               `json:"used_by_id,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
	Notes       string              `json:"notes,omitempty"`

	Transaction Transaction `gorm:"foreignKey:transaction_id" json:"-"`
	UsedBy      *User       `gorm:"foreignKey:used_by_id" json:"-"`

	types.Timestamps
}

// NewVoucher issues the credit attached to an approved transaction. The
// code is generated once and never rewritten.
func NewVoucher(t *Transaction, value decimal.Decimal, expiresAt time.Time) Voucher {
	return Voucher{
		TransactionID: t.ID,
		Code:          uuid.NewString(),
		Value:         value,
		ExpiresAt:     expiresAt,
		Status:        types.VOUCHER_ACTIVE,
	}
}

func (v *Voucher) PastExpiry(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

func (v *Voucher) ExpiresWithin(now time.Time, days int) bool {
	if v.PastExpiry(now) {
		return false
	}
	return !v.ExpiresAt.After(now.AddDate(0, 0, days))
}

func (v *Voucher) CanBeUsed(now time.Time) bool {
	return v.Status == types.VOUCHER_ACTIVE && !v.PastExpiry(now)
}

func (v *Voucher) Use(now time.Time, userID uint) bool {
	if !v.CanBeUsed(now) {
		return false
	}
	v.Status = types.VOUCHER_USED
	v.UsedAt = &now
	v.UsedByID = &userID
	return true
}

func (v *Voucher) CanBeCancelled() bool {
	return v.Status == types.VOUCHER_ACTIVE || v.Status == types.VOUCHER_EXPIRED
}

func (v *Voucher) Cancel(now time.Time, reason string) bool {
	if !v.CanBeCancelled() {
		return false
	}
	v.Status = types.VOUCHER_CANCELLED
	v.CancelledAt = &now
	v.appendNote(now, "cancelled", reason)
	return true
}

func (v *Voucher) Expire(now time.Time) bool {
	if v.Status != types.VOUCHER_ACTIVE || !v.PastExpiry(now) {
		return false
	}
	v.Status = types.VOUCHER_EXPIRED
	return true
}

// Reactivate brings a cancelled voucher back into circulation, clearing
// the use and cancellation markers.
func (v *Voucher) Reactivate(now time.Time, reason string) bool {
	if v.Status != types.VOUCHER_CANCELLED {
		return false
	}
	v.Status = types.VOUCHER_ACTIVE
	v.UsedAt = nil
	v.UsedByID = nil
	v.CancelledAt = nil
	v.appendNote(now, "reactivated", reason)
	return true
}

func (v *Voucher) appendNote(now time.Time, action string, reason string) {
	if reason == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s: %s", now.Format("2006-01-02 15:04"), action, reason)
	if v.Notes != "" {
		v.Notes += "\n"
	}
	v.Notes += line
}
