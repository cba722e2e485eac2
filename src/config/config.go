package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// Settlement tunables. Values mirror the commercial rules agreed with the
// billing team; they are variables (not consts) so tests can reference them
// and ops can tweak them in one place.
var (
	// AutoApprovalCeiling caps the trade value a pending transaction may
	// carry and still be approved without human review.
	AutoApprovalCeiling = decimal.NewFromFloat(1000.00)

	// DownPaymentPolicy: when true the first installment slice of an
	// approved transaction is recorded as paid at creation ("down payment
	// collected at sale"). Overridable per generation call.
	DownPaymentPolicy = true

	// DefaultMarkupRate is the trade-volume commission (percent) charged
	// on monthly invoices when the account has no negotiated rate.
	DefaultMarkupRate = decimal.NewFromInt(5)

	// DefaultManagerRate is the management fee (percent) charged when the
	// account has a manager and the owner has no negotiated rate.
	DefaultManagerRate = decimal.NewFromInt(2)

	// VoucherValidityDays is how long a voucher issued on approval stays
	// redeemable.
	VoucherValidityDays = 90

	// VoucherAlertDays is the default look-ahead window for the
	// "expiring soon" section of the voucher sweep report.
	VoucherAlertDays = 7

	// CancelledInvoiceRetentionMonths is how long cancelled invoices are
	// kept before the cleanup sweep purges them.
	CancelledInvoiceRetentionMonths = 6

	// OverdueSweepDayLimit: the monthly overdue sweeps inside the full
	// orchestration only run during the first days of the month unless
	// forced.
	OverdueSweepDayLimit = 5

	// DefaultBatchLimit bounds how many records a single sweep touches.
	DefaultBatchLimit = 50
)

// AccountTypeMinimums floors the generated monthly invoice by account type.
// Unknown codes floor at zero.
var AccountTypeMinimums = map[string]decimal.Decimal{
	"individual":  decimal.RequireFromString("29.90"),
	"business":    decimal.RequireFromString("99.90"),
	"franchise":   decimal.RequireFromString("199.90"),
	"head_office": decimal.RequireFromString("499.90"),
}

func AccountTypeMinimum(code string) decimal.Decimal {
	if min, ok := AccountTypeMinimums[code]; ok {
		return min
	}
	return decimal.Zero
}
