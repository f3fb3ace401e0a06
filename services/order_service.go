package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

// OrderService drives the order lifecycle:
//
//	draft -> pending -> served -> closed
//	draft -> cancelled (the order and its items are deleted)
//
// Every status write is a compare-and-set on the expected source status, so
// two requests racing on the same order cannot both apply a transition.
type OrderService struct {
	DB       *gorm.DB
	Kitchens *KitchenRegistry
	Pairings *PairingService
	Audit    *AuditRecorder
	Now      func() time.Time
}

func NewOrderService(db *gorm.DB, kitchens *KitchenRegistry, pairings *PairingService, audit *AuditRecorder) *OrderService {
	return &OrderService{
		DB:       db,
		Kitchens: kitchens,
		Pairings: pairings,
		Audit:    audit,
		Now:      time.Now,
	}
}

// AddItemInput is one line to attach to a draft order.
type AddItemInput struct {
	OrderID   uint
	ProductID uint
	Quantity  int
	Notes     string
}

// Create opens a draft order for a linked waiter. The order keeps the kitchen
// code current at creation even if the waiter re-links later.
func (s *OrderService) Create(ctx context.Context, actor Actor) (*models.Order, error) {
	if err := actor.require(models.RoleWaiter); err != nil {
		return nil, err
	}

	code, linked, err := s.Pairings.Current(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrNotLinked
	}

	now := s.Now()
	order := models.Order{
		WaiterID:    actor.UserID,
		KitchenCode: code,
		Status:      models.OrderStatusDraft,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	s.logTransition(actor, &order, "order created")
	s.Audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "order created",
		EntityType: EntityOrder,
		EntityID:   order.ID,
		Detail:     code,
	})
	return &order, nil
}

// AddItem attaches a product line to a draft order owned by actor, snapshotting
// the product's current price.
func (s *OrderService) AddItem(ctx context.Context, actor Actor, in AddItemInput) (*models.OrderItem, error) {
	if err := actor.require(models.RoleWaiter); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item models.OrderItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, in.OrderID)
		if err != nil {
			return err
		}
		if order.WaiterID != actor.UserID {
			return fmt.Errorf("%w: order %d belongs to another waiter", ErrForbidden, order.ID)
		}
		if order.Status != models.OrderStatusDraft {
			return fmt.Errorf("%w: order %d is %s, items can only be added to a draft", ErrInvalidState, order.ID, order.Status)
		}

		var product models.Product
		err = tx.Where("id = ? AND is_active = ?", in.ProductID, true).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		now := s.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusDraft).
			Update("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d left draft", ErrInvalidState, order.ID)
		}

		item = models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
			Notes:     in.Notes,
			CreatedAt: now,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		item.Product = &product
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":   item.OrderID,
		"product_id": item.ProductID,
		"qty":        item.Quantity,
		"actor":      actor.String(),
	}).Debug("order item added")
	return &item, nil
}

// Submit hands a draft order to its kitchen and fixes the total to the sum of
// its line subtotals. Submitting an order that is already pending is a no-op.
func (s *OrderService) Submit(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	if err := actor.require(models.RoleWaiter); err != nil {
		return nil, err
	}

	var (
		order   *models.Order
		changed bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = findOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.WaiterID != actor.UserID {
			return fmt.Errorf("%w: order %d belongs to another waiter", ErrForbidden, order.ID)
		}
		if order.Status == models.OrderStatusPending {
			return nil
		}
		if order.Status != models.OrderStatusDraft {
			return invalidTransition(order, models.OrderStatusPending)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyOrder
		}

		total := OrderTotal(items)
		now := s.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusDraft).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusPending,
				"total_amount": total,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidState, order.ID)
		}

		order.Status = models.OrderStatusPending
		order.TotalAmount = total
		order.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logTransition(actor, order, "order submitted")
		s.Audit.Record(ctx, AuditEntry{
			Actor:      actor,
			Action:     "order submitted",
			EntityType: EntityOrder,
			EntityID:   order.ID,
			Detail:     fmt.Sprintf("kitchen=%s total=%s", order.KitchenCode, order.TotalAmount.StringFixed(2)),
		})
	}
	return order, nil
}

// Cancel deletes a draft order and its items. Only the waiter who created the
// order may cancel it.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID uint) error {
	if err := actor.require(models.RoleWaiter); err != nil {
		return err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.WaiterID != actor.UserID {
			return fmt.Errorf("%w: order %d belongs to another waiter", ErrForbidden, order.ID)
		}
		if order.Status != models.OrderStatusDraft {
			return invalidTransition(order, models.OrderStatusCancelled)
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND status = ?", order.ID, models.OrderStatusDraft).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidState, order.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": orderID,
		"actor":    actor.String(),
	}).Info("order cancelled")
	s.Audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "order cancelled",
		EntityType: EntityOrder,
		EntityID:   orderID,
	})
	return nil
}

// MarkServed moves a pending order to served. The acting kitchen must own the
// code the order was submitted to.
func (s *OrderService) MarkServed(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	if err := actor.require(models.RoleKitchen); err != nil {
		return nil, err
	}

	code, err := s.Kitchens.CodeFor(ctx, actor.UserID)
	if errors.Is(err, ErrKitchenNotFound) {
		return nil, fmt.Errorf("%w: kitchen has no pairing code", ErrForbidden)
	}
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, orderID, models.OrderStatusServed, code, nil)
}

// Close settles a served order. The cashier must be linked to the kitchen the
// order was submitted to.
func (s *OrderService) Close(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	if err := actor.require(models.RoleCashier); err != nil {
		return nil, err
	}

	code, linked, err := s.Pairings.Current(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrNotLinked
	}

	return s.transition(ctx, actor, orderID, models.OrderStatusClosed, code, func(o *models.Order, now time.Time) map[string]interface{} {
		o.ClosedAt = &now
		return map[string]interface{}{"closed_at": now}
	})
}

// transition applies a forward move to target for an order scoped to
// kitchenCode. An order already at target is returned unchanged.
func (s *OrderService) transition(
	ctx context.Context,
	actor Actor,
	orderID uint,
	target models.OrderStatus,
	kitchenCode string,
	extra func(o *models.Order, now time.Time) map[string]interface{},
) (*models.Order, error) {
	from, ok := models.SourceOf(target)
	if !ok {
		return nil, fmt.Errorf("%w: no transition into %s", ErrInvalidState, target)
	}

	var (
		order   *models.Order
		changed bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = findOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.KitchenCode != kitchenCode {
			return fmt.Errorf("%w: order %d belongs to another kitchen", ErrForbidden, order.ID)
		}
		if order.Status == target {
			return nil
		}
		if order.Status != from {
			return invalidTransition(order, target)
		}

		now := s.Now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		if extra != nil {
			for k, v := range extra(order, now) {
				updates[k] = v
			}
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidState, order.ID)
		}

		order.Status = target
		order.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		action := "order " + string(target)
		s.logTransition(actor, order, action)
		s.Audit.Record(ctx, AuditEntry{
			Actor:      actor,
			Action:     action,
			EntityType: EntityOrder,
			EntityID:   order.ID,
		})
	}
	return order, nil
}

func (s *OrderService) logTransition(actor Actor, order *models.Order, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"kitchen":  order.KitchenCode,
		"actor":    actor.String(),
	}).Info(msg)
}

// OrderTotal sums quantity times unit price over items.
func OrderTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func findOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := tx.First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func invalidTransition(order *models.Order, target models.OrderStatus) error {
	return fmt.Errorf("%w: order %d is %s, cannot move to %s", ErrInvalidState, order.ID, order.Status, target)
}
