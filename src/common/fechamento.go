package common

import (
	"fmt"
	"log"
	"time"

	"backoffice/src/config"
	"backoffice/src/db"
	"backoffice/src/models"
	"backoffice/src/types"
)

type FechamentoOpts struct {
	Force        bool
	SkipGerar    bool
	SkipVencidas bool
	SkipLimpeza  bool
	Notify       bool
	ReportOnly   bool
}

type StepError struct {
	Step   string `json:"step"`
	Reason string `json:"reason"`
}

type FechamentoReport struct {
	Mode            types.ExecutionMode        `json:"mode"`
	RanAt           time.Time                  `json:"ran_at"`
	Monthly         *MonthlyInvoiceReport      `json:"monthly,omitempty"`
	Installments    *OverdueInstallmentsReport `json:"installments,omitempty"`
	Invoices        *OverdueInvoicesReport     `json:"invoices,omitempty"`
	Approvals       *AutoApprovalReport        `json:"approvals,omitempty"`
	Reconciliation  *ReconciliationReport      `json:"reconciliation,omitempty"`
	AutoDebit       *AutoDebitReport           `json:"auto_debit,omitempty"`
	Purge           *PurgeReport               `json:"purge,omitempty"`
	ConsistencyFixes int                       `json:"consistency_fixes"`
	Receivables     *ReceivablesSummary        `json:"receivables,omitempty"`
	StepErrors      []StepError                `json:"step_errors,omitempty"`
}

func (r *FechamentoReport) addStepError(step string, err error) {
	log.Printf("[fechamento] Step %s failed: %s\n", step, err.Error())
	r.StepErrors = append(r.StepErrors, StepError{Step: step, Reason: err.Error()})
}

// RunFechamento is the full orchestration: invoice generation, overdue
// sweeps (first days of the month only, unless forced), auto-approval,
// reconciliation, auto-debit, cleanup and the consistency sweep. Step
// failures are recorded and the run moves on; only an unreachable
// persistence layer aborts everything, at the query sites themselves.
func RunFechamento(now time.Time, mode types.ExecutionMode, opts FechamentoOpts) *FechamentoReport {
	if opts.ReportOnly {
		mode = types.ModeSimulate
	}
	report := &FechamentoReport{Mode: mode, RanAt: now}
	log.Printf("[fechamento] Starting full settlement run mode=%s\n", mode)

	if !opts.SkipGerar {
		monthly, err := GenerateMonthlyInvoices(now, mode, int(now.Month()), now.Year(), opts.Force)
		if err != nil {
			report.addStepError("cobrancas:gerar", err)
		} else {
			report.Monthly = monthly
		}
	}

	if !opts.SkipVencidas {
		if now.Day() <= config.OverdueSweepDayLimit || opts.Force {
			installments, err := MarkOverdueInstallments(now, mode, 0, true)
			if err != nil {
				report.addStepError("parcelas:vencidas", err)
			} else {
				report.Installments = installments
			}
			invoices, err := MarkOverdueInvoices(now, mode, OverdueInvoicesOpts{Notify: opts.Notify})
			if err != nil {
				report.addStepError("cobrancas:vencidas", err)
			} else {
				report.Invoices = invoices
			}
		} else {
			log.Printf("[fechamento] Day %d past overdue-sweep window (<= %d). Skipping sweeps\n", now.Day(), config.OverdueSweepDayLimit)
		}
	}

	approvals, err := AutoApprovePending(now, mode, config.DefaultBatchLimit, true)
	if err != nil {
		report.addStepError("transacoes:aprovar", err)
	} else {
		report.Approvals = approvals
	}

	reconciliation, err := ReconcileAccountLimits(now, mode)
	if err != nil {
		report.addStepError("contas:reconciliar", err)
	} else {
		report.Reconciliation = reconciliation
	}

	autoDebit, err := AutoDebitInvoices(now, mode, config.DefaultBatchLimit)
	if err != nil {
		report.addStepError("cobrancas:debito", err)
	} else {
		report.AutoDebit = autoDebit
	}

	if !opts.SkipLimpeza {
		purge, err := PurgeCancelledInvoices(now, mode)
		if err != nil {
			report.addStepError("cobrancas:limpeza", err)
		} else {
			report.Purge = purge
		}
	}

	fixes, err := FixInconsistentInvoices(now, mode)
	if err != nil {
		report.addStepError("consistencia", err)
	} else {
		report.ConsistencyFixes = fixes
	}

	receivables, err := OpenReceivables(now)
	if err != nil {
		report.addStepError("contas-a-receber", err)
	} else {
		report.Receivables = receivables
	}

	log.Printf("[fechamento] Done. %d step error(s)\n", len(report.StepErrors))
	return report
}

// FixInconsistentInvoices corrects invoices still labelled pending whose
// due date already passed. Set-based so re-runs are no-ops.
func FixInconsistentInvoices(now time.Time, mode types.ExecutionMode) (int, error) {
	conn := db.GetDb()
	if !mode.Persist() {
		var stale int64
		err := conn.
			Model(&models.Invoice{}).
			Where("status = ?", types.INVOICE_PENDING).
			Where("due_at < ?", now).
			Count(&stale).
			Error
		if err != nil {
			return 0, err
		}
		return int(stale), nil
	}
	result := conn.
		Model(&models.Invoice{}).
		Where("status = ?", types.INVOICE_PENDING).
		Where("due_at < ?", now).
		Update("status", types.INVOICE_OVERDUE)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *FechamentoReport) Print() {
	PrintBanner("fechamento", r.Mode)
	if r.Monthly != nil {
		r.Monthly.Print()
	}
	if r.Installments != nil {
		r.Installments.Print()
	}
	if r.Invoices != nil {
		r.Invoices.Print()
	}
	if r.Approvals != nil {
		r.Approvals.Print()
	}
	if r.Reconciliation != nil {
		r.Reconciliation.Print()
	}
	if r.AutoDebit != nil {
		r.AutoDebit.Print()
	}
	if r.Purge != nil {
		r.Purge.Print()
	}
	fmt.Printf("Cobrancas corrigidas para vencidas: %d\n", r.ConsistencyFixes)
	if r.Receivables != nil {
		r.Receivables.Print()
	}
	if len(r.StepErrors) > 0 {
		fmt.Printf("Etapas com erro (%d):\n", len(r.StepErrors))
		for _, e := range r.StepErrors {
			fmt.Printf("  - %s: %s\n", e.Step, e.Reason)
		}
	}
}
