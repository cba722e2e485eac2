package models

import (
	"backoffice/src/types"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Name       string          `json:"name"`
	MonthlyFee decimal.Decimal `gorm:"type:decimal(12,2)" json:"monthly_fee"`
	Active     bool            `gorm:"default:true" json:"active"`

	types.Timestamps
}
