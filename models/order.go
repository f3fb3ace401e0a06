package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists, per source state, the states an order may move to.
// Cancelled is terminal and never persisted: cancelling deletes the order.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:   {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending: {OrderStatusServed},
	OrderStatusServed:  {OrderStatusClosed},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourceOf returns the only state from which target can be reached.
func SourceOf(target OrderStatus) (OrderStatus, bool) {
	for from, targets := range orderTransitions {
		for _, t := range targets {
			if t == target {
				return from, true
			}
		}
	}
	return "", false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	WaiterID    uint            `gorm:"not null;index" json:"waiter_id"`
	Waiter      *User           `gorm:"foreignKey:WaiterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"waiter,omitempty"`
	KitchenCode string          `gorm:"type:varchar(6);not null;index" json:"kitchen_code"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	OrderItems  []OrderItem     `gorm:"foreignKey:OrderID" json:"order_items,omitempty"`
}
