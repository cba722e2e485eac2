package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"backoffice/src/boot"
	"backoffice/src/common"
	"backoffice/src/config"
	"backoffice/src/lib"
	"backoffice/src/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

const apiPrefix string = "/api/v1"

var mesValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	mes, ok := fl.Field().Interface().(int)
	if !ok {
		return false
	}
	return mes >= 1 && mes <= 12
}

// runServer exposes the batch jobs to HTTP-style schedulers. Auth is the
// admin panel's concern; this surface is only reachable behind it.
func runServer(args []string) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("mes", mesValidatorFunc)
	}

	r := gin.Default()
	r.Use(cors.Default())

	r.GET(apiPrefix+"/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST(apiPrefix+"/jobs/:name", RunJobHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Job trigger API listening on :%s\n", port)
	return r.Run(":" + port)
}

// RunJobHandler triggers one batch operation. The body is optional JSON;
// unknown jobs are 404, fatal/precondition errors are 502 so the caller's
// scheduler sees the failure.
func RunJobHandler(ctx *gin.Context) {
	var params types.RunJobRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body types.RunJobRequestBody
	raw, _ := io.ReadAll(ctx.Request.Body)
	if len(raw) > 0 {
		if !gjson.ValidBytes(raw) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
		body.DryRun = gjson.GetBytes(raw, "dry_run").Bool()
		body.Force = gjson.GetBytes(raw, "force").Bool()
		body.Mes = int(gjson.GetBytes(raw, "mes").Int())
		body.Ano = int(gjson.GetBytes(raw, "ano").Int())
		body.Limit = int(gjson.GetBytes(raw, "limit").Int())
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.Struct(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	now := time.Now()
	mode := types.Mode(body.DryRun)
	if body.Mes == 0 {
		body.Mes = int(now.Month())
	}
	if body.Ano == 0 {
		body.Ano = now.Year()
	}
	if body.Limit == 0 {
		body.Limit = config.DefaultBatchLimit
	}

	// Simulate writes nothing, so it never takes the run lock either.
	if mode.Persist() {
		if !lib.AcquireRunLock(ctx.Request.Context(), params.Name, 30*time.Minute) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "job already running"})
			return
		}
		defer lib.ReleaseRunLock(context.Background(), params.Name)
	}

	var report any
	var err error
	switch params.Name {
	case "vouchers:expirar":
		report, err = common.ExpireVouchers(now, mode, config.VoucherAlertDays)
	case "parcelas:vencidas":
		report, err = common.MarkOverdueInstallments(now, mode, 0, true)
	case "cobrancas:vencidas":
		report, err = common.MarkOverdueInvoices(now, mode, common.OverdueInvoicesOpts{})
	case "cobrancas:gerar":
		report, err = common.GenerateMonthlyInvoices(now, mode, body.Mes, body.Ano, body.Force)
	case "transacoes:aprovar":
		report, err = common.AutoApprovePending(now, mode, body.Limit, true)
	case "contas:reconciliar":
		report, err = common.ReconcileAccountLimits(now, mode)
	case "cobrancas:debito":
		report, err = common.AutoDebitInvoices(now, mode, body.Limit)
	case "cobrancas:limpeza":
		report, err = common.PurgeCancelledInvoices(now, mode)
	case "fechamento":
		report = common.RunFechamento(now, mode, common.FechamentoOpts{Force: body.Force})
	default:
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown job " + params.Name})
		return
	}
	if err != nil {
		log.Printf("[%s] Fatal: %s\n", params.Name, err.Error())
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// runDaemon keeps the process alive with the daily fechamento scheduled.
func runDaemon() error {
	boot.InitScheduler()
	select {}
}
