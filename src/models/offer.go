package models

import (
	"backoffice/src/types"

	"github.com/shopspring/decimal"
)

type Offer struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	SellerID    uint            `gorm:"index" json:"seller_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Active      bool            `gorm:"default:true" json:"active"`

	Seller User `gorm:"foreignKey:seller_id" json:"-"`

	types.Timestamps
}
