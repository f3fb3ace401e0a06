package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/testutil"
)

// orderSetup is one kitchen with a linked waiter and cashier plus two products.
type orderSetup struct {
	*fixture
	cook    Actor
	waiter  Actor
	cashier Actor
	taco    models.Product
	beer    models.Product
}

func newOrderSetup(t *testing.T) *orderSetup {
	t.Helper()
	f := newFixture(t)
	s := &orderSetup{fixture: f}
	s.cook = f.kitchen(t, "cocina1", "AB12CD")
	s.waiter = f.linkedStaff(t, "mesero1", models.RoleWaiter, "AB12CD")
	s.cashier = f.linkedStaff(t, "caja1", models.RoleCashier, "AB12CD")
	s.taco = testutil.CreateProduct(t, f.db, "Taco al Pastor", models.CategoryTacos, "15.00")
	s.beer = testutil.CreateProduct(t, f.db, "Cerveza", models.CategoryBebidas, "35.00")
	return s
}

func (s *orderSetup) submittedOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)
	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 1})
	require.NoError(t, err)
	order, err = s.orders.Submit(ctx, s.waiter, order.ID)
	require.NoError(t, err)
	return order
}

func reload(t *testing.T, f *fixture, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, id).Error)
	return order
}

func TestCreateRequiresLink(t *testing.T) {
	f := newFixture(t)
	waiter := f.actor(t, "mesero1", models.RoleWaiter)

	_, err := f.orders.Create(ctx, waiter)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestCreateOpensDraftWithFrozenCode(t *testing.T) {
	s := newOrderSetup(t)
	s.kitchen(t, "cocina2", "ZZ99ZZ")

	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDraft, order.Status)
	assert.Equal(t, "AB12CD", order.KitchenCode)
	assert.True(t, order.TotalAmount.IsZero())

	_, err = s.pairings.Link(ctx, s.waiter, "ZZ99ZZ")
	require.NoError(t, err)

	stored := reload(t, s.fixture, order.ID)
	assert.Equal(t, "AB12CD", stored.KitchenCode)
}

func TestSubmitComputesTotal(t *testing.T) {
	s := newOrderSetup(t)
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)

	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.beer.ID, Quantity: 1, Notes: "bien fría"})
	require.NoError(t, err)

	submitted, err := s.orders.Submit(ctx, s.waiter, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, submitted.Status)
	assert.Equal(t, "65.00", submitted.TotalAmount.StringFixed(2))

	stored := reload(t, s.fixture, order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, "65.00", stored.TotalAmount.StringFixed(2))
	assert.True(t, stored.UpdatedAt.After(order.UpdatedAt))
}

func TestSubmitIsIdempotentWhenPending(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	again, err := s.orders.Submit(ctx, s.waiter, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, again.Status)
	assert.Equal(t, order.TotalAmount.StringFixed(2), again.TotalAmount.StringFixed(2))
}

func TestSubmitEmptyOrder(t *testing.T) {
	s := newOrderSetup(t)
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)

	_, err = s.orders.Submit(ctx, s.waiter, order.ID)
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Equal(t, models.OrderStatusDraft, reload(t, s.fixture, order.ID).Status)
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	s := newOrderSetup(t)
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)

	item, err := s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "15.00", item.UnitPrice.StringFixed(2))

	require.NoError(t, s.db.Model(&models.Product{}).Where("id = ?", s.taco.ID).Update("price", "20.00").Error)

	submitted, err := s.orders.Submit(ctx, s.waiter, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", submitted.TotalAmount.StringFixed(2))
}

func TestAddItemValidation(t *testing.T) {
	s := newOrderSetup(t)
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)

	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: 9999, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, s.db.Model(&models.Product{}).Where("id = ?", s.beer.ID).Update("is_active", false).Error)
	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.beer.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: 9999, ProductID: s.taco.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	other := s.linkedStaff(t, "mesero2", models.RoleWaiter, "AB12CD")
	_, err = s.orders.AddItem(ctx, other, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddItemOnlyWhileDraft(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	_, err := s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.beer.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel(t *testing.T) {
	s := newOrderSetup(t)
	order, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)
	_, err = s.orders.AddItem(ctx, s.waiter, AddItemInput{OrderID: order.ID, ProductID: s.taco.ID, Quantity: 3})
	require.NoError(t, err)

	other := s.linkedStaff(t, "mesero2", models.RoleWaiter, "AB12CD")
	assert.ErrorIs(t, s.orders.Cancel(ctx, other, order.ID), ErrForbidden)

	require.NoError(t, s.orders.Cancel(ctx, s.waiter, order.ID))

	var orders, items int64
	require.NoError(t, s.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orders).Error)
	require.NoError(t, s.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	assert.ErrorIs(t, s.orders.Cancel(ctx, s.waiter, order.ID), ErrOrderNotFound)
}

func TestCancelAfterSubmit(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	assert.ErrorIs(t, s.orders.Cancel(ctx, s.waiter, order.ID), ErrInvalidState)
}

func TestServeThenClose(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	served, err := s.orders.MarkServed(ctx, s.cook, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusServed, served.Status)

	closed, err := s.orders.Close(ctx, s.cashier, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	stored := reload(t, s.fixture, order.ID)
	assert.Equal(t, models.OrderStatusClosed, stored.Status)
	require.NotNil(t, stored.ClosedAt)

	// already closed
	again, err := s.orders.Close(ctx, s.cashier, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusClosed, again.Status)

	_, err = s.orders.MarkServed(ctx, s.cook, order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseBeforeServed(t *testing.T) {
	s := newOrderSetup(t)

	draft, err := s.orders.Create(ctx, s.waiter)
	require.NoError(t, err)
	_, err = s.orders.Close(ctx, s.cashier, draft.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	pending := s.submittedOrder(t)
	_, err = s.orders.Close(ctx, s.cashier, pending.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = s.orders.MarkServed(ctx, s.cook, draft.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTransitionsAreScopedToKitchen(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	otherCook := s.kitchen(t, "cocina2", "ZZ99ZZ")
	_, err := s.orders.MarkServed(ctx, otherCook, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.orders.MarkServed(ctx, s.cook, order.ID)
	require.NoError(t, err)

	otherCashier := s.linkedStaff(t, "caja2", models.RoleCashier, "ZZ99ZZ")
	_, err = s.orders.Close(ctx, otherCashier, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	unlinked := s.actor(t, "caja3", models.RoleCashier)
	_, err = s.orders.Close(ctx, unlinked, order.ID)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestKitchenWithoutCodeCannotServe(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)
	fresh := s.actor(t, "cocina2", models.RoleKitchen)

	_, err := s.orders.MarkServed(ctx, fresh, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRoleChecks(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)

	_, err := s.orders.Create(ctx, s.cashier)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.orders.MarkServed(ctx, s.waiter, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.orders.Close(ctx, s.cook, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLifecycleIsAudited(t *testing.T) {
	s := newOrderSetup(t)
	order := s.submittedOrder(t)
	_, err := s.orders.MarkServed(ctx, s.cook, order.ID)
	require.NoError(t, err)

	var actions []string
	require.NoError(t, s.db.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", EntityOrder, order.ID).
		Order("id asc").
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{"order created", "order submitted", "order served"}, actions)
}
