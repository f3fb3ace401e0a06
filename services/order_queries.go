package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

// OrderSummary is a waiter dashboard row.
type OrderSummary struct {
	models.Order
	ItemCount int64 `json:"item_count"`
}

// LineItemView is one row of an order's detail.
type LineItemView struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Notes           string          `json:"notes"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
}

// QueueView is a kitchen or cashier queue scoped to one kitchen code.
type QueueView struct {
	KitchenCode string         `json:"kitchen_code"`
	Linked      bool           `json:"linked"`
	Orders      []models.Order `json:"orders"`
}

type orderItemCount struct {
	OrderID   uint
	ItemCount int64
}

// GetOrder loads an order with its items and waiter.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Waiter").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("OrderItems.Product").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Items returns the line items of an order with product names and subtotals.
func (s *OrderService) Items(ctx context.Context, orderID uint) ([]LineItemView, error) {
	db := s.DB.WithContext(ctx)
	if _, err := findOrder(db, orderID); err != nil {
		return nil, err
	}

	var items []models.OrderItem
	if err := db.Preload("Product").Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}

	views := make([]LineItemView, 0, len(items))
	for _, item := range items {
		subtotal := item.Subtotal()
		view := LineItemView{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Notes:           item.Notes,
			Subtotal:        subtotal,
			SubtotalDisplay: utils.FormatCurrencyMXN(subtotal),
		}
		if item.Product != nil {
			view.ProductName = item.Product.Name
		}
		views = append(views, view)
	}
	return views, nil
}

// WaiterOrders lists the waiter's orders that are not closed, newest first.
func (s *OrderService) WaiterOrders(ctx context.Context, actor Actor) ([]OrderSummary, error) {
	if err := actor.require(models.RoleWaiter); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var orders []models.Order
	if err := db.
		Where("waiter_id = ? AND status <> ?", actor.UserID, models.OrderStatusClosed).
		Order("created_at desc").
		Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(orders))
	if len(orders) == 0 {
		return summaries, nil
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	var counts []orderItemCount
	if err := db.Model(&models.OrderItem{}).
		Select("order_id, COUNT(*) AS item_count").
		Where("order_id IN ?", ids).
		Group("order_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byOrder := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byOrder[c.OrderID] = c.ItemCount
	}
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{Order: o, ItemCount: byOrder[o.ID]})
	}
	return summaries, nil
}

// KitchenQueue lists pending orders for the acting kitchen, oldest first.
// The kitchen's code is issued on first use.
func (s *OrderService) KitchenQueue(ctx context.Context, actor Actor) (*QueueView, error) {
	code, err := s.Kitchens.EnsureCode(ctx, actor)
	if err != nil {
		return nil, err
	}

	orders, err := s.ordersByKitchen(ctx, code, models.OrderStatusPending, "created_at asc", "id asc")
	if err != nil {
		return nil, err
	}
	return &QueueView{KitchenCode: code, Linked: true, Orders: orders}, nil
}

// CashierQueue lists served orders for the cashier's linked kitchen, newest
// first. An unlinked cashier gets an empty queue.
func (s *OrderService) CashierQueue(ctx context.Context, actor Actor) (*QueueView, error) {
	if err := actor.require(models.RoleCashier); err != nil {
		return nil, err
	}

	code, linked, err := s.Pairings.Current(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return &QueueView{Orders: []models.Order{}}, nil
	}

	orders, err := s.ordersByKitchen(ctx, code, models.OrderStatusServed, "created_at desc", "id desc")
	if err != nil {
		return nil, err
	}
	return &QueueView{KitchenCode: code, Linked: true, Orders: orders}, nil
}

func (s *OrderService) ordersByKitchen(ctx context.Context, code string, status models.OrderStatus, order ...string) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).
		Preload("Waiter").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("OrderItems.Product").
		Where("kitchen_code = ? AND status = ?", code, status)
	for _, o := range order {
		q = q.Order(o)
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
