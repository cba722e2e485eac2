package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"backoffice/src/boot"
	"backoffice/src/common"
	"backoffice/src/types"

	_ "github.com/joho/godotenv/autoload"
)

const usage = `backoffice <job> [flags]

Jobs:
  vouchers:expirar     expire vouchers past their expiration
  parcelas:vencidas    mark overdue installments
  cobrancas:vencidas   mark overdue invoices and report delinquency
  cobrancas:gerar      generate the period's monthly invoices
  transacoes:aprovar   validate and auto-approve pending transactions
  contas:reconciliar   recompute stale account credit limits
  cobrancas:debito     settle pending invoices by auto-debit
  cobrancas:limpeza    purge stale cancelled invoices
  fechamento           run the full settlement orchestration
  serve                HTTP trigger surface for the jobs
  daemon               run the scheduler with the daily fechamento

Every job accepts --dry-run.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	job := os.Args[1]
	args := os.Args[2:]

	if job == "help" || job == "-h" || job == "--help" {
		fmt.Println(usage)
		return
	}

	boot.InitDb()
	now := time.Now()

	var err error
	switch job {
	case "vouchers:expirar":
		err = runExpireVouchers(now, args)
	case "parcelas:vencidas":
		err = runOverdueInstallments(now, args)
	case "cobrancas:vencidas":
		err = runOverdueInvoices(now, args)
	case "cobrancas:gerar":
		err = runGenerateInvoices(now, args)
	case "transacoes:aprovar":
		err = runAutoApprove(now, args)
	case "contas:reconciliar":
		err = runReconcile(now, args)
	case "cobrancas:debito":
		err = runAutoDebit(now, args)
	case "cobrancas:limpeza":
		err = runPurge(now, args)
	case "fechamento":
		err = runFechamento(now, args)
	case "serve":
		err = runServer(args)
	case "daemon":
		err = runDaemon()
	default:
		fmt.Fprintf(os.Stderr, "unknown job %q\n\n%s\n", job, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("[%s] Fatal: %s\n", job, err.Error())
		os.Exit(1)
	}
}

func newFlagSet(job string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(job, flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "compute and report without persisting")
	return fs, dryRun
}

func runExpireVouchers(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("vouchers:expirar")
	alertDays := fs.Int("dias-alerta", -1, "alert window for vouchers expiring soon (0 disables, -1 uses the default)")
	fs.Parse(args)

	report, err := common.ExpireVouchers(now, types.Mode(*dryRun), *alertDays)
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runOverdueInstallments(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("parcelas:vencidas")
	tolerance := fs.Int("dias-tolerancia", 0, "grace days before marking overdue")
	encargos := fs.Bool("calcular-encargos", false, "persist interest/penalty in the same pass")
	fs.Parse(args)

	report, err := common.MarkOverdueInstallments(now, types.Mode(*dryRun), *tolerance, *encargos)
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runOverdueInvoices(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("cobrancas:vencidas")
	tolerance := fs.Int("dias-tolerancia", 0, "grace days before marking overdue")
	inReview := fs.Bool("incluir-em-analise", false, "include in-review invoices")
	notify := fs.Bool("notificar", false, "emit manager notifications")
	fs.Parse(args)

	report, err := common.MarkOverdueInvoices(now, types.Mode(*dryRun), common.OverdueInvoicesOpts{
		ToleranceDays:   *tolerance,
		IncludeInReview: *inReview,
		Notify:          *notify,
	})
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runGenerateInvoices(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("cobrancas:gerar")
	mes := fs.Int("mes", int(now.Month()), "target month (1-12)")
	ano := fs.Int("ano", now.Year(), "target year")
	force := fs.Bool("force", false, "bypass the period guard")
	fs.Parse(args)

	report, err := common.GenerateMonthlyInvoices(now, types.Mode(*dryRun), *mes, *ano, *force)
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runAutoApprove(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("transacoes:aprovar")
	limit := fs.Int("limit", 50, "batch size cap")
	autoApprove := fs.Bool("auto-approve", false, "approve eligible transactions and cascade")
	fs.Parse(args)

	report, err := common.AutoApprovePending(now, types.Mode(*dryRun), *limit, *autoApprove)
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runReconcile(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("contas:reconciliar")
	fs.Parse(args)

	report, err := common.ReconcileAccountLimits(now, types.Mode(*dryRun))
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runAutoDebit(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("cobrancas:debito")
	limit := fs.Int("limit", 50, "batch size cap")
	fs.Parse(args)

	report, err := common.AutoDebitInvoices(now, types.Mode(*dryRun), *limit)
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runPurge(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("cobrancas:limpeza")
	fs.Parse(args)

	report, err := common.PurgeCancelledInvoices(now, types.Mode(*dryRun))
	if err != nil {
		return err
	}
	report.Print()
	return nil
}

func runFechamento(now time.Time, args []string) error {
	fs, dryRun := newFlagSet("fechamento")
	force := fs.Bool("force", false, "bypass period/day guards")
	skipGerar := fs.Bool("skip-gerar", false, "skip monthly invoice generation")
	skipVencidas := fs.Bool("skip-vencidas", false, "skip the overdue sweeps")
	skipLimpeza := fs.Bool("skip-limpeza", false, "skip the cancelled-invoice purge")
	relatorio := fs.Bool("relatorio", false, "report-only mode, no mutation")
	notify := fs.Bool("notificar", false, "emit manager notifications")
	fs.Parse(args)

	report := common.RunFechamento(now, types.Mode(*dryRun), common.FechamentoOpts{
		Force:        *force,
		SkipGerar:    *skipGerar,
		SkipVencidas: *skipVencidas,
		SkipLimpeza:  *skipLimpeza,
		Notify:       *notify,
		ReportOnly:   *relatorio,
	})
	report.Print()
	if len(report.StepErrors) > 0 {
		log.Printf("[fechamento] Finished with %d step error(s)\n", len(report.StepErrors))
	}
	return nil
}
