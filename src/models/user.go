package models

import (
	"backoffice/src/types"

	"github.com/shopspring/decimal"
)

type User struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `json:"name"`
	Email  string `gorm:"uniqueIndex" json:"email"`
	Active bool   `gorm:"default:true" json:"active"`

	// ManagerCommissionRate is the percent this user charges as manager
	// of other accounts. Nil means the default rate applies.
	ManagerCommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)" json:"manager_commission_rate,omitempty"`

	Account *Account `gorm:"foreignKey:user_id" json:"account,omitempty"`

	types.Timestamps
}
