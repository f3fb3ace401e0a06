package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryTacos   ProductCategory = "tacos"
	CategoryBebidas ProductCategory = "bebidas"
	CategoryExtras  ProductCategory = "extras"
	CategoryPostres ProductCategory = "postres"
)

// Valid reports whether c is one of the menu categories.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryTacos, CategoryBebidas, CategoryExtras, CategoryPostres:
		return true
	}
	return false
}

// Product is a menu entry. A nil Stock means unlimited.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       *int            `json:"stock"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}
