package common

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"backoffice/src/config"
	"backoffice/src/db"
	"backoffice/src/models"
	"backoffice/src/types"
	"backoffice/src/utils"

	"github.com/shopspring/decimal"
)

type OverdueInvoicesReport struct {
	types.BatchReport
	MarkedOverdue     int             `json:"marked_overdue"`
	TotalValue        decimal.Decimal `json:"total_value"`
	TotalWithEncargos decimal.Decimal `json:"total_with_encargos"`
	AverageDaysLate   float64         `json:"average_days_late"`
	TopDebtors        []types.Debtor  `json:"top_debtors,omitempty"`
	Notified          int             `json:"notified"`
}

type OverdueInvoicesOpts struct {
	ToleranceDays   int
	IncludeInReview bool
	Notify          bool
}

// MarkOverdueInvoices moves pending (and optionally in-review) invoices
// past due date plus tolerance to overdue, oldest first, and builds the
// delinquency report from the just-marked set.
func MarkOverdueInvoices(now time.Time, mode types.ExecutionMode, opts OverdueInvoicesOpts) (*OverdueInvoicesReport, error) {
	report := &OverdueInvoicesReport{
		BatchReport:       types.BatchReport{Job: "cobrancas:vencidas", Mode: mode},
		TotalValue:        decimal.Zero,
		TotalWithEncargos: decimal.Zero,
	}

	statuses := []types.InvoiceStatus{types.INVOICE_PENDING}
	if opts.IncludeInReview {
		statuses = append(statuses, types.INVOICE_IN_REVIEW)
	}

	conn := db.GetDb()
	cutoff := now.AddDate(0, 0, -opts.ToleranceDays)
	var invoices []models.Invoice
	err := conn.
		Model(&models.Invoice{}).
		Where("status IN ?", statuses).
		Where("due_at < ?", cutoff).
		Order("due_at asc").
		Find(&invoices).
		Error
	if err != nil {
		return nil, err
	}

	var marked []models.Invoice
	totalDays := 0
	for i := range invoices {
		inv := &invoices[i]
		report.Processed++
		if !inv.PastDue(now, opts.ToleranceDays, opts.IncludeInReview) {
			report.Skipped++
			continue
		}
		if mode.Persist() {
			previous := inv.Status
			if !inv.MarkOverdue() {
				report.Skipped++
				continue
			}
			err := conn.
				Model(&models.Invoice{}).
				Where("id = ? AND status = ?", inv.ID, previous).
				Update("status", types.INVOICE_OVERDUE).
				Error
			if err != nil {
				log.Printf("[cobrancas:vencidas] Error updating invoice %d: %s\n", inv.ID, err.Error())
				report.AddError(strconv.Itoa(int(inv.ID)), err.Error())
				continue
			}
		} else {
			// Simulate still reports what would be owed.
			inv.Status = types.INVOICE_OVERDUE
		}
		enc := inv.Encargos(now)
		report.MarkedOverdue++
		report.TotalValue = report.TotalValue.Add(inv.Value)
		report.TotalWithEncargos = report.TotalWithEncargos.Add(enc.TotalDue)
		totalDays += enc.DaysOverdue
		marked = append(marked, *inv)

		if opts.Notify && inv.ManagerID != nil {
			// Delivery is an external collaborator; the notice is logged.
			log.Printf("[cobrancas:vencidas] NOTIFY manager=%d invoice=%d reference=%q total=%s\n",
				*inv.ManagerID, inv.ID, inv.Reference, utils.FormatBRL(enc.TotalDue))
			report.Notified++
		}
	}

	if report.MarkedOverdue > 0 {
		report.AverageDaysLate = float64(totalDays) / float64(report.MarkedOverdue)
	}
	report.TopDebtors = TopDebtors(marked, now, 5)
	return report, nil
}

// TopDebtors ranks overdue invoices by total owed with encargos.
func TopDebtors(invoices []models.Invoice, now time.Time, n int) []types.Debtor {
	debtors := make([]types.Debtor, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		enc := inv.Encargos(now)
		debtors = append(debtors, types.Debtor{
			InvoiceID: inv.ID,
			Reference: inv.Reference,
			DaysLate:  enc.DaysOverdue,
			TotalOwed: enc.TotalDue,
			AccountID: inv.AccountID,
			UserID:    inv.UserID,
		})
	}
	sort.SliceStable(debtors, func(a, b int) bool {
		return debtors[a].TotalOwed.GreaterThan(debtors[b].TotalOwed)
	})
	if len(debtors) > n {
		debtors = debtors[:n]
	}
	return debtors
}

type MonthlyInvoiceReport struct {
	types.BatchReport
	Period          string          `json:"period"`
	Generated       int             `json:"generated"`
	TotalValue      decimal.Decimal `json:"total_value"`
	SkippedExisting bool            `json:"skipped_existing"`
}

// ComputeMonthlyInvoiceValue prices one account's monthly invoice: plan
// fee plus trade-volume commission plus management fee when a manager is
// assigned, floored by the account-type minimum. Returns zero when the
// computed value is not positive, which callers treat as "no invoice".
func ComputeMonthlyInvoiceValue(acc *models.Account) decimal.Decimal {
	value := decimal.Zero
	if acc.Plan != nil {
		value = value.Add(acc.Plan.MonthlyFee)
	}

	markup := config.DefaultMarkupRate
	if acc.MarkupRate != nil {
		markup = *acc.MarkupRate
	}
	value = value.Add(utils.Percent(acc.MonthlySalesVolume, markup))

	if acc.ManagerID != nil {
		rate := config.DefaultManagerRate
		if acc.Manager != nil && acc.Manager.ManagerCommissionRate != nil {
			rate = *acc.Manager.ManagerCommissionRate
		}
		value = value.Add(utils.Percent(acc.MonthlySalesVolume, rate))
	}

	if !value.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	if floor := config.AccountTypeMinimum(acc.AccountType); value.LessThan(floor) {
		return floor
	}
	return utils.Round2(value)
}

// GenerateMonthlyInvoices creates the period's invoices for every active,
// unblocked account with a plan. The period guard skips the whole run if
// any invoice already references the MM/YYYY token, unless forced.
func GenerateMonthlyInvoices(now time.Time, mode types.ExecutionMode, month int, year int, force bool) (*MonthlyInvoiceReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	token := utils.PeriodToken(month, year)
	report := &MonthlyInvoiceReport{
		BatchReport: types.BatchReport{Job: "cobrancas:gerar", Mode: mode},
		Period:      token,
		TotalValue:  decimal.Zero,
	}

	conn := db.GetDb()
	if !force {
		var existing int64
		err := conn.
			Model(&models.Invoice{}).
			Where("reference LIKE ?", "%"+token+"%").
			Count(&existing).
			Error
		if err != nil {
			return nil, err
		}
		if existing > 0 {
			log.Printf("[cobrancas:gerar] Period %s already generated (%d invoices). Skipping\n", token, existing)
			report.SkippedExisting = true
			return report, nil
		}
	}

	var accounts []models.Account
	err := conn.
		Model(&models.Account{}).
		Preload("Plan").
		Preload("Manager").
		Where("status = ?", types.ACCOUNT_ACTIVE).
		Where("blocked = ?", false).
		Where("plan_id IS NOT NULL").
		Find(&accounts).
		Error
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no billable accounts found for period %s", token)
	}

	for i := range accounts {
		acc := &accounts[i]
		report.Processed++
		recordID := strconv.Itoa(int(acc.ID))

		value := ComputeMonthlyInvoiceValue(acc)
		if value.IsZero() {
			report.Skipped++
			continue
		}
		accountID := acc.ID
		userID := acc.UserID
		invoice := models.Invoice{
			UserID:    &userID,
			AccountID: &accountID,
			ManagerID: acc.ManagerID,
			Value:     value,
			Reference: fmt.Sprintf("Mensalidade %s - conta %d", token, acc.ID),
			DueAt:     utils.DueDateFor(acc.DueDay, month, year, now),
			Status:    types.INVOICE_PENDING,
		}
		if mode.Persist() {
			if err := conn.Create(&invoice).Error; err != nil {
				log.Printf("[cobrancas:gerar] Error creating invoice for account %d: %s\n", acc.ID, err.Error())
				report.AddError(recordID, err.Error())
				continue
			}
		}
		report.Generated++
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report, nil
}
