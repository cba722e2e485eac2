package models

import (
	"fmt"
	"time"

	"backoffice/src/config"
	"backoffice/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID   uint    `gorm:"primarykey" json:"id"`
	Code *string `gorm:"uniqueIndex" json:"code,omitempty"`

	BuyerID  uint  `gorm:"index" json:"buyer_id"`
	SellerID uint  `gorm:"index" json:"seller_id"`
	OfferID  *uint `json:"offer_id,omitempty"`

	Value                 decimal.Decimal `gorm:"type:decimal(12,2)" json:"value"`
	AdditionalValue       decimal.Decimal `gorm:"type:decimal(12,2)" json:"additional_value"`
	Commission            decimal.Decimal `gorm:"type:decimal(12,2)" json:"commission"`
	CommissionInstallment decimal.Decimal `gorm:"type:decimal(12,2)" json:"commission_installment"`
	InstallmentCount      int             `gorm:"default:1" json:"installment_count"`

	Description   string                  `json:"description,omitempty"`
	Rating        *int                    `json:"rating,omitempty"`
	Status        types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	ReversedAt    *time.Time              `json:"reversed_at,omitempty"`
	IssuesVoucher bool                    `gorm:"default:false" json:"issues_voucher"`
	Notes         string                  `json:"notes,omitempty"`
	Metadata      types.JSONB             `gorm:"type:jsonb" json:"metadata,omitempty"`

	Buyer        User          `gorm:"foreignKey:buyer_id" json:"-"`
	Seller       User          `gorm:"foreignKey:seller_id" json:"-"`
	Offer        *Offer        `gorm:"foreignKey:offer_id" json:"-"`
	Installments []Installment `gorm:"foreignKey:transaction_id;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
	Voucher      *Voucher      `gorm:"foreignKey:transaction_id;constraint:OnDelete:CASCADE" json:"voucher,omitempty"`

	types.Timestamps
}

func (t *Transaction) CanBeApproved() bool {
	return t.Status == types.TRANSACTION_PENDING
}

func (t *Transaction) CanBeCancelled() bool {
	return t.Status == types.TRANSACTION_PENDING || t.Status == types.TRANSACTION_APPROVED
}

func (t *Transaction) CanBeReversed() bool {
	return t.Status == types.TRANSACTION_APPROVED
}

// Approve moves a pending transaction to approved and assigns its opaque
// code if one was never generated. It does NOT create installments or
// vouchers; that cascade belongs to the settlement sweep so the entity
// stays unaware of its siblings.
func (t *Transaction) Approve(now time.Time) bool {
	if !t.CanBeApproved() {
		return false
	}
	t.Status = types.TRANSACTION_APPROVED
	t.ReversedAt = nil
	if t.Code == nil {
		code := uuid.NewString()
		t.Code = &code
	}
	return true
}

func (t *Transaction) Cancel(now time.Time, reason string) bool {
	if !t.CanBeCancelled() {
		return false
	}
	t.Status = types.TRANSACTION_CANCELLED
	t.ReversedAt = &now
	t.appendNote(now, "cancelled", reason)
	return true
}

func (t *Transaction) Reverse(now time.Time, reason string) bool {
	if !t.CanBeReversed() {
		return false
	}
	t.Status = types.TRANSACTION_REVERSED
	t.ReversedAt = &now
	t.appendNote(now, "reversed", reason)
	return true
}

func (t *Transaction) appendNote(now time.Time, action string, reason string) {
	if reason == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s: %s", now.Format("2006-01-02 15:04"), action, reason)
	if t.Notes != "" {
		t.Notes += "\n"
	}
	t.Notes += line
}

// ValidateRelationships checks the references of a transaction whose
// associations were preloaded. It returns reasons, never errors: the
// caller decides whether a violation skips, aborts or just logs.
func (t *Transaction) ValidateRelationships() []string {
	var violations []string
	if t.BuyerID == 0 || t.Buyer.ID == 0 {
		violations = append(violations, "buyer missing or not found")
	}
	if t.SellerID == 0 || t.Seller.ID == 0 {
		violations = append(violations, "seller missing or not found")
	}
	if t.BuyerID != 0 && t.BuyerID == t.SellerID {
		violations = append(violations, "buyer and seller are the same user")
	}
	if t.OfferID != nil && (t.Offer == nil || t.Offer.ID == 0) {
		violations = append(violations, fmt.Sprintf("offer %d not found", *t.OfferID))
	}
	return violations
}

func (t *Transaction) ValidateBusinessRules() []string {
	var violations []string
	if !t.Value.GreaterThan(decimal.Zero) {
		violations = append(violations, "value must be greater than zero")
	}
	if t.InstallmentCount < 1 {
		violations = append(violations, "installment count must be at least 1")
	}
	if t.Commission.LessThan(decimal.Zero) {
		violations = append(violations, "commission cannot be negative")
	}
	if t.Rating != nil && (*t.Rating < 0 || *t.Rating > 5) {
		violations = append(violations, "rating must be between 0 and 5")
	}
	return violations
}

// EligibleForAutoApproval implements the unattended-approval rule: the
// trade value stays under the ceiling and both parties exist with active,
// unblocked accounts. Requires Buyer.Account and Seller.Account preloaded.
func (t *Transaction) EligibleForAutoApproval() (bool, string) {
	if t.Value.GreaterThan(config.AutoApprovalCeiling) {
		return false, fmt.Sprintf("value %s above auto-approval ceiling %s", t.Value.StringFixed(2), config.AutoApprovalCeiling.StringFixed(2))
	}
	if t.Buyer.ID == 0 || t.Seller.ID == 0 {
		return false, "buyer or seller not resolved"
	}
	if t.Buyer.Account == nil || !t.Buyer.Account.IsActive() {
		return false, "buyer account inactive or blocked"
	}
	if t.Seller.Account == nil || !t.Seller.Account.IsActive() {
		return false, "seller account inactive or blocked"
	}
	return true, ""
}
