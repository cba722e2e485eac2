package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Round2 is the house rounding rule for money: two decimal places,
// half away from zero. Every settlement figure goes through it before
// being persisted or compared.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns value × rate/100, rounded to the cent.
func Percent(value decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return Round2(value.Mul(rate).Div(decimal.NewFromInt(100)))
}

// AddMonths moves t forward by n calendar months, clamping the day so a
// Jan 31 due date lands on Feb 28/29 instead of rolling into March.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	shifted := first.AddDate(0, n, 0)
	last := DaysInMonth(shifted.Year(), shifted.Month())
	if day > last {
		day = last
	}
	return time.Date(shifted.Year(), shifted.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the whole days elapsed from a to b, floored and
// never negative. This is the "days overdue" primitive.
func DaysBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// PeriodToken formats a billing period the way invoice reference labels
// carry it, e.g. "03/2026".
func PeriodToken(month int, year int) string {
	return fmt.Sprintf("%02d/%04d", month, year)
}

// DueDateFor computes the due date for a billing period from an account's
// configured due day, clamped to the month length. Dates already past roll
// to the next month so a freshly generated invoice is never born overdue.
func DueDateFor(dueDay int, month int, year int, now time.Time) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	last := DaysInMonth(year, time.Month(month))
	day := dueDay
	if day > last {
		day = last
	}
	due := time.Date(year, time.Month(month), day, 23, 59, 59, 0, now.Location())
	if due.Before(now) {
		due = AddMonths(due, 1)
	}
	return due
}

// FormatBRL renders a money value for batch report output.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
