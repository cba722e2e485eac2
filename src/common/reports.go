package common

import (
	"fmt"
	"time"

	"backoffice/src/db"
	"backoffice/src/models"
	"backoffice/src/types"
	"backoffice/src/utils"

	"github.com/shopspring/decimal"
)

// ReceivablesSummary is the open-receivables rollup: everything pending
// or overdue, with encargos on the overdue part.
type ReceivablesSummary struct {
	OpenInvoices   int             `json:"open_invoices"`
	Pending        decimal.Decimal `json:"pending"`
	Overdue        decimal.Decimal `json:"overdue"`
	Encargos       decimal.Decimal `json:"encargos"`
	Total          decimal.Decimal `json:"total"`
	OverduePercent float64         `json:"overdue_percent"`
}

func OpenReceivables(now time.Time) (*ReceivablesSummary, error) {
	conn := db.GetDb()
	var invoices []models.Invoice
	err := conn.
		Model(&models.Invoice{}).
		Where("status IN ?", []types.InvoiceStatus{types.INVOICE_PENDING, types.INVOICE_OVERDUE, types.INVOICE_PARTIAL}).
		Find(&invoices).
		Error
	if err != nil {
		return nil, err
	}

	summary := &ReceivablesSummary{
		Pending:  decimal.Zero,
		Overdue:  decimal.Zero,
		Encargos: decimal.Zero,
		Total:    decimal.Zero,
	}
	for i := range invoices {
		inv := &invoices[i]
		summary.OpenInvoices++
		if inv.Status == types.INVOICE_OVERDUE {
			enc := inv.Encargos(now)
			summary.Overdue = summary.Overdue.Add(inv.Value)
			summary.Encargos = summary.Encargos.Add(enc.Interest).Add(enc.Penalty)
		} else {
			summary.Pending = summary.Pending.Add(inv.Value)
		}
	}
	summary.Total = summary.Pending.Add(summary.Overdue).Add(summary.Encargos)
	open := summary.Pending.Add(summary.Overdue)
	if open.GreaterThan(decimal.Zero) {
		pct, _ := summary.Overdue.Div(open).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		summary.OverduePercent = pct
	}
	return summary, nil
}

// PrintBanner makes dry-run unmistakable in job output.
func PrintBanner(job string, mode types.ExecutionMode) {
	if mode.Persist() {
		fmt.Printf("== %s ==\n", job)
		return
	}
	fmt.Println("========================================")
	fmt.Printf("== %s  [SIMULACAO - nada sera gravado] ==\n", job)
	fmt.Println("========================================")
}

func printErrors(errors []types.BatchError) {
	if len(errors) == 0 {
		return
	}
	fmt.Printf("Erros (%d):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("  - [%s] %s\n", e.RecordID, e.Reason)
	}
}

func (r *VoucherExpiryReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Analisados: %d  Expirados: %d  Valor expirado: %s\n",
		r.Processed, r.Expired, utils.FormatBRL(r.TotalExpiredValue))
	if len(r.ExpiringSoon) > 0 {
		fmt.Printf("Expirando em breve (%d):\n", len(r.ExpiringSoon))
		for _, a := range r.ExpiringSoon {
			fmt.Printf("  - %s  %s  vence em %d dia(s)\n", a.Code, utils.FormatBRL(a.Value), a.DaysLeft)
		}
	}
	printErrors(r.Errors)
}

func (r *OverdueInstallmentsReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Analisadas: %d  Marcadas vencidas: %d  Valor: %s  Encargos: %s\n",
		r.Processed, r.MarkedOverdue, utils.FormatBRL(r.TotalValue), utils.FormatBRL(r.TotalEncargos))
	printErrors(r.Errors)
}

func (r *OverdueInvoicesReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Analisadas: %d  Marcadas vencidas: %d  Valor: %s  Com encargos: %s  Atraso medio: %.1f dia(s)\n",
		r.Processed, r.MarkedOverdue, utils.FormatBRL(r.TotalValue), utils.FormatBRL(r.TotalWithEncargos), r.AverageDaysLate)
	if len(r.TopDebtors) > 0 {
		fmt.Println("Maiores devedores:")
		for i, d := range r.TopDebtors {
			fmt.Printf("  %d. cobranca #%d %q  %d dia(s)  %s\n", i+1, d.InvoiceID, d.Reference, d.DaysLate, utils.FormatBRL(d.TotalOwed))
		}
	}
	if r.Notified > 0 {
		fmt.Printf("Gestores notificados: %d\n", r.Notified)
	}
	printErrors(r.Errors)
}

func (r *MonthlyInvoiceReport) Print() {
	PrintBanner(r.Job, r.Mode)
	if r.SkippedExisting {
		fmt.Printf("Periodo %s ja gerado. Nada a fazer (use --force para regerar)\n", r.Period)
		return
	}
	fmt.Printf("Periodo: %s  Contas: %d  Geradas: %d  Valor total: %s\n",
		r.Period, r.Processed, r.Generated, utils.FormatBRL(r.TotalValue))
	printErrors(r.Errors)
}

func (r *AutoApprovalReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Analisadas: %d  Elegiveis: %d  Aprovadas: %d  Parcelas criadas: %d  Vouchers emitidos: %d  Valor: %s\n",
		r.Processed, r.Eligible, r.Approved, r.InstallmentsCreated, r.VouchersIssued, utils.FormatBRL(r.TotalValue))
	printErrors(r.Errors)
}

func (r *ReconciliationReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Contas corrigidas: %d\n", r.Updated)
	printErrors(r.Errors)
}

func (r *AutoDebitReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Analisadas: %d  Liquidadas: %d  Total debitado: %s\n",
		r.Processed, r.Settled, utils.FormatBRL(r.TotalDebited))
	printErrors(r.Errors)
}

func (r *PurgeReport) Print() {
	PrintBanner(r.Job, r.Mode)
	fmt.Printf("Cobrancas canceladas removidas: %d\n", r.Purged)
	printErrors(r.Errors)
}

func (s *ReceivablesSummary) Print() {
	fmt.Printf("Contas a receber: %d abertas  Pendente: %s  Vencido: %s (%.1f%%)  Encargos: %s  Total: %s\n",
		s.OpenInvoices, utils.FormatBRL(s.Pending), utils.FormatBRL(s.Overdue), s.OverduePercent,
		utils.FormatBRL(s.Encargos), utils.FormatBRL(s.Total))
}
