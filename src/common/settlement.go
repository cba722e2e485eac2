package common

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"backoffice/src/config"
	"backoffice/src/db"
	"backoffice/src/models"
	"backoffice/src/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VoucherAlert struct {
	VoucherID uint            `json:"voucher_id"`
	Code      string          `json:"code"`
	Value     decimal.Decimal `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
	DaysLeft  int             `json:"days_left"`
}

type VoucherExpiryReport struct {
	types.BatchReport
	Expired           int             `json:"expired"`
	TotalExpiredValue decimal.Decimal `json:"total_expired_value"`
	ExpiringSoon      []VoucherAlert  `json:"expiring_soon,omitempty"`
}

// ExpireVouchers sweeps active vouchers past their expiration and marks
// them expired. Vouchers expiring inside the alert window are reported
// but never touched. An alert window of 0 disables the alerts; negative
// means unset and falls back to the configured default.
func ExpireVouchers(now time.Time, mode types.ExecutionMode, alertDays int) (*VoucherExpiryReport, error) {
	if alertDays < 0 {
		alertDays = config.VoucherAlertDays
	}
	report := &VoucherExpiryReport{
		BatchReport:       types.BatchReport{Job: "vouchers:expirar", Mode: mode},
		TotalExpiredValue: decimal.Zero,
	}

	conn := db.GetDb()
	var vouchers []models.Voucher
	err := conn.
		Model(&models.Voucher{}).
		Where("status = ?", types.VOUCHER_ACTIVE).
		Where("expires_at < ?", now.AddDate(0, 0, alertDays)).
		Order("expires_at asc").
		Find(&vouchers).
		Error
	if err != nil {
		return nil, err
	}

	for i := range vouchers {
		v := &vouchers[i]
		report.Processed++
		if !v.PastExpiry(now) {
			if v.ExpiresWithin(now, alertDays) {
				report.ExpiringSoon = append(report.ExpiringSoon, VoucherAlert{
					VoucherID: v.ID,
					Code:      v.Code,
					Value:     v.Value,
					ExpiresAt: v.ExpiresAt,
					DaysLeft:  int(v.ExpiresAt.Sub(now).Hours() / 24),
				})
			}
			report.Skipped++
			continue
		}
		if mode.Persist() {
			if !v.Expire(now) {
				report.Skipped++
				continue
			}
			err := conn.
				Model(&models.Voucher{}).
				Where("id = ? AND status = ?", v.ID, types.VOUCHER_ACTIVE).
				Update("status", types.VOUCHER_EXPIRED).
				Error
			if err != nil {
				log.Printf("[vouchers:expirar] Error expiring voucher %s: %s\n", v.Code, err.Error())
				report.AddError(v.Code, err.Error())
				continue
			}
		}
		report.Expired++
		report.TotalExpiredValue = report.TotalExpiredValue.Add(v.Value)
	}
	return report, nil
}

type OverdueInstallmentsReport struct {
	types.BatchReport
	MarkedOverdue int             `json:"marked_overdue"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalEncargos decimal.Decimal `json:"total_encargos"`
}

// MarkOverdueInstallments moves pending installments past due date plus
// tolerance to overdue. With computeEncargos the accrued interest and
// penalty are persisted in the same pass; either way the sweep is safe to
// re-run because encargos derive from the due date, never from prior runs.
func MarkOverdueInstallments(now time.Time, mode types.ExecutionMode, toleranceDays int, computeEncargos bool) (*OverdueInstallmentsReport, error) {
	report := &OverdueInstallmentsReport{
		BatchReport:   types.BatchReport{Job: "parcelas:vencidas", Mode: mode},
		TotalValue:    decimal.Zero,
		TotalEncargos: decimal.Zero,
	}

	conn := db.GetDb()
	cutoff := now.AddDate(0, 0, -toleranceDays)
	var installments []models.Installment
	err := conn.
		Model(&models.Installment{}).
		Where("status = ?", types.INSTALLMENT_PENDING).
		Where("due_date < ?", cutoff).
		Order("due_date asc").
		Find(&installments).
		Error
	if err != nil {
		return nil, err
	}

	for i := range installments {
		inst := &installments[i]
		report.Processed++
		if !inst.PastDue(now, toleranceDays) {
			report.Skipped++
			continue
		}
		if mode.Persist() {
			if !inst.MarkOverdue() {
				report.Skipped++
				continue
			}
			updates := map[string]any{"status": types.INSTALLMENT_OVERDUE}
			if computeEncargos {
				enc := models.DefaultInstallmentEncargos.Compute(inst.Value, inst.DueDate, now)
				updates["interest"] = enc.Interest
				updates["penalty"] = enc.Penalty
			}
			err := conn.
				Model(&models.Installment{}).
				Where("id = ? AND status = ?", inst.ID, types.INSTALLMENT_PENDING).
				Updates(updates).
				Error
			if err != nil {
				log.Printf("[parcelas:vencidas] Error updating installment %d: %s\n", inst.ID, err.Error())
				report.AddError(strconv.Itoa(int(inst.ID)), err.Error())
				continue
			}
		}
		enc := models.DefaultInstallmentEncargos.Compute(inst.Value, inst.DueDate, now)
		report.MarkedOverdue++
		report.TotalValue = report.TotalValue.Add(inst.Value)
		report.TotalEncargos = report.TotalEncargos.Add(enc.Interest).Add(enc.Penalty)
	}
	return report, nil
}

type AutoApprovalReport struct {
	types.BatchReport
	Eligible            int             `json:"eligible"`
	Approved            int             `json:"approved"`
	InstallmentsCreated int             `json:"installments_created"`
	VouchersIssued      int             `json:"vouchers_issued"`
	TotalValue          decimal.Decimal `json:"total_value"`
}

// AutoApprovePending validates a bounded batch of pending transactions
// and, when autoApprove is set, approves the eligible ones and cascades
// installment and voucher creation. Without autoApprove the pass only
// reports eligibility.
func AutoApprovePending(now time.Time, mode types.ExecutionMode, limit int, autoApprove bool) (*AutoApprovalReport, error) {
	if limit <= 0 {
		limit = config.DefaultBatchLimit
	}
	report := &AutoApprovalReport{
		BatchReport: types.BatchReport{Job: "transacoes:aprovar", Mode: mode},
		TotalValue:  decimal.Zero,
	}

	conn := db.GetDb()
	var transactions []models.Transaction
	err := conn.
		Model(&models.Transaction{}).
		Preload("Buyer.Account").
		Preload("Seller.Account").
		Preload("Offer").
		Where("status = ?", types.TRANSACTION_PENDING).
		Order("created_at asc").
		Limit(limit).
		Find(&transactions).
		Error
	if err != nil {
		return nil, err
	}

	for i := range transactions {
		t := &transactions[i]
		report.Processed++
		recordID := strconv.Itoa(int(t.ID))

		violations := append(t.ValidateRelationships(), t.ValidateBusinessRules()...)
		if len(violations) > 0 {
			for _, v := range violations {
				report.AddError(recordID, v)
			}
			report.Skipped++
			continue
		}
		ok, reason := t.EligibleForAutoApproval()
		if !ok {
			report.AddError(recordID, reason)
			report.Skipped++
			continue
		}
		report.Eligible++
		report.TotalValue = report.TotalValue.Add(t.Value)
		if !autoApprove {
			continue
		}

		installments, voucher := 0, false
		if mode.Persist() {
			installments, voucher, err = approveAndCascade(conn, t, now)
			if err != nil {
				log.Printf("[transacoes:aprovar] Error approving transaction %d: %s\n", t.ID, err.Error())
				report.AddError(recordID, err.Error())
				continue
			}
		} else {
			if t.InstallmentCount > 1 {
				installments = t.InstallmentCount
			}
			voucher = t.IssuesVoucher
		}
		report.Approved++
		report.InstallmentsCreated += installments
		if voucher {
			report.VouchersIssued++
		}
	}
	return report, nil
}

// approveAndCascade applies the approval transition and the creation of
// installments and the voucher in one database transaction, so a failed
// cascade never leaves a half-approved trade behind.
func approveAndCascade(conn *gorm.DB, t *models.Transaction, now time.Time) (int, bool, error) {
	created, issued := 0, false
	err := conn.Transaction(func(tx *gorm.DB) error {
		if !t.Approve(now) {
			return fmt.Errorf("transaction %d cannot be approved from status %s", t.ID, t.Status)
		}
		if t.Metadata == nil {
			t.Metadata = types.JSONB{}
		}
		t.Metadata["approved_via"] = "batch"
		t.Metadata["approved_at"] = now.UTC().Format(time.RFC3339)
		err := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND status = ?", t.ID, types.TRANSACTION_PENDING).
			Updates(map[string]any{
				"status":      t.Status,
				"code":        t.Code,
				"reversed_at": nil,
				"metadata":    t.Metadata,
			}).
			Error
		if err != nil {
			return err
		}
		if t.InstallmentCount > 1 {
			installments := models.GenerateInstallments(t, now, models.GenerateInstallmentsOpts{})
			if err := tx.Create(&installments).Error; err != nil {
				return err
			}
			created = len(installments)
		}
		if t.IssuesVoucher {
			voucher := models.NewVoucher(t, t.Value, now.AddDate(0, 0, config.VoucherValidityDays))
			if err := tx.Create(&voucher).Error; err != nil {
				return err
			}
			issued = true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return created, issued, nil
}

type ReconciliationReport struct {
	types.BatchReport
	Updated int `json:"updated"`
}

// ReconcileAccountLimits recomputes available_credit for accounts where
// the denormalized column drifted. The fix is a single set-based UPDATE
// so interleaved runs cannot lose writes.
func ReconcileAccountLimits(now time.Time, mode types.ExecutionMode) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		BatchReport: types.BatchReport{Job: "contas:reconciliar", Mode: mode},
	}

	conn := db.GetDb()
	if !mode.Persist() {
		var stale int64
		err := conn.
			Model(&models.Account{}).
			Where("available_credit <> credit_limit - used_credit").
			Count(&stale).
			Error
		if err != nil {
			return nil, err
		}
		report.Processed = int(stale)
		report.Updated = int(stale)
		return report, nil
	}

	result := conn.
		Model(&models.Account{}).
		Where("available_credit <> credit_limit - used_credit").
		Update("available_credit", gorm.Expr("credit_limit - used_credit"))
	if result.Error != nil {
		return nil, result.Error
	}
	report.Processed = int(result.RowsAffected)
	report.Updated = int(result.RowsAffected)
	return report, nil
}

type AutoDebitReport struct {
	types.BatchReport
	Settled      int             `json:"settled"`
	TotalDebited decimal.Decimal `json:"total_debited"`
}

// AutoDebitInvoices settles pending invoices of auto-debit accounts from
// the account balance. The debit is a conditional single-row UPDATE
// (balance >= value), so two overlapping runs can never overdraw.
func AutoDebitInvoices(now time.Time, mode types.ExecutionMode, limit int) (*AutoDebitReport, error) {
	if limit <= 0 {
		limit = config.DefaultBatchLimit
	}
	report := &AutoDebitReport{
		BatchReport:  types.BatchReport{Job: "cobrancas:debito", Mode: mode},
		TotalDebited: decimal.Zero,
	}

	conn := db.GetDb()
	var invoices []models.Invoice
	err := conn.
		Model(&models.Invoice{}).
		Joins("JOIN accounts ON accounts.id = invoices.account_id").
		Where("invoices.status = ?", types.INVOICE_PENDING).
		Where("accounts.auto_debit = ?", true).
		Preload("Account").
		Order("invoices.due_at asc").
		Limit(limit).
		Find(&invoices).
		Error
	if err != nil {
		return nil, err
	}

	for i := range invoices {
		inv := &invoices[i]
		report.Processed++
		recordID := strconv.Itoa(int(inv.ID))
		if inv.Account == nil {
			report.AddError(recordID, "account not loaded")
			report.Skipped++
			continue
		}
		if !inv.Account.CanDebit(inv.Value) {
			report.Skipped++
			continue
		}
		if mode.Persist() {
			err := conn.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Account{}).
					Where("id = ? AND balance >= ?", *inv.AccountID, inv.Value).
					Update("balance", gorm.Expr("balance - ?", inv.Value))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("insufficient balance on account %d", *inv.AccountID)
				}
				if !inv.MarkPaid(now, inv.Value) {
					return fmt.Errorf("invoice %d cannot be paid from status %s", inv.ID, inv.Status)
				}
				return tx.
					Model(&models.Invoice{}).
					Where("id = ? AND status = ?", inv.ID, types.INVOICE_PENDING).
					Updates(map[string]any{
						"status":      types.INVOICE_PAID,
						"paid_at":     now,
						"amount_paid": inv.Value,
					}).
					Error
			})
			if err != nil {
				log.Printf("[cobrancas:debito] Error settling invoice %d: %s\n", inv.ID, err.Error())
				report.AddError(recordID, err.Error())
				continue
			}
		}
		report.Settled++
		report.TotalDebited = report.TotalDebited.Add(inv.Value)
	}
	return report, nil
}

type PurgeReport struct {
	types.BatchReport
	Purged int `json:"purged"`
}

// PurgeCancelledInvoices hard-deletes cancelled invoices older than the
// retention window. Dry-run only counts them.
func PurgeCancelledInvoices(now time.Time, mode types.ExecutionMode) (*PurgeReport, error) {
	report := &PurgeReport{
		BatchReport: types.BatchReport{Job: "cobrancas:limpeza", Mode: mode},
	}

	conn := db.GetDb()
	cutoff := now.AddDate(0, -config.CancelledInvoiceRetentionMonths, 0)
	if !mode.Persist() {
		var stale int64
		err := conn.
			Model(&models.Invoice{}).
			Where("status = ?", types.INVOICE_CANCELLED).
			Where("updated_at < ?", cutoff).
			Count(&stale).
			Error
		if err != nil {
			return nil, err
		}
		report.Processed = int(stale)
		report.Purged = int(stale)
		return report, nil
	}

	result := conn.
		Unscoped().
		Where("status = ?", types.INVOICE_CANCELLED).
		Where("updated_at < ?", cutoff).
		Delete(&models.Invoice{})
	if result.Error != nil {
		return nil, result.Error
	}
	report.Processed = int(result.RowsAffected)
	report.Purged = int(result.RowsAffected)
	return report, nil
}
