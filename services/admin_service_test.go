package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/testutil"
)

func newAdminSetup(t *testing.T) (*AdminService, *fixture, Actor) {
	t.Helper()
	f := newFixture(t)
	// created first so it gets the protected id
	admin := f.actor(t, "admin", models.RoleAdmin)
	require.Equal(t, PrimaryAdminID, admin.UserID)

	svc := NewAdminService(f.db, f.audit)
	svc.Now = f.clock.Now
	return svc, f, admin
}

func TestParseEntityKind(t *testing.T) {
	for _, in := range []string{"users", "Products", " tables "} {
		_, err := ParseEntityKind(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseEntityKind("orders")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	svc, f, _ := newAdminSetup(t)
	waiter := f.actor(t, "mesero1", models.RoleWaiter)

	_, err := svc.List(ctx, waiter, EntityUsers)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, waiter, EntityTables, 1), ErrForbidden)
}

func TestAdminProductLifecycle(t *testing.T) {
	svc, f, admin := newAdminSetup(t)

	stock := 10
	product, err := svc.CreateProduct(ctx, admin, ProductInput{
		Name:     "Taco de Lengua",
		Category: models.CategoryTacos,
		Price:    decimal.RequireFromString("22.50"),
		Stock:    &stock,
	})
	require.NoError(t, err)
	assert.True(t, product.IsActive)

	price := decimal.RequireFromString("24.00")
	inactive := false
	updated, err := svc.UpdateProduct(ctx, admin, product.ID, ProductUpdate{Price: &price, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "24.00", updated.Price.StringFixed(2))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Taco de Lengua", updated.Name)

	got, err := svc.Get(ctx, admin, EntityProducts, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.(*models.Product).ID)

	require.NoError(t, svc.Delete(ctx, admin, EntityProducts, product.ID))
	_, err = svc.Get(ctx, admin, EntityProducts, product.ID)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	var logged int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("entity_type = ?", string(EntityProducts)).Count(&logged).Error)
	assert.EqualValues(t, 3, logged)
}

func TestAdminProductValidation(t *testing.T) {
	svc, _, admin := newAdminSetup(t)

	_, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Sopa", Category: "sopas", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateProduct(ctx, admin, ProductInput{Name: "Taco", Category: models.CategoryTacos, Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProduct(ctx, admin, 9999, ProductUpdate{})
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestAdminDeleteRefusesReferencedRows(t *testing.T) {
	svc, f, admin := newAdminSetup(t)
	f.kitchen(t, "cocina1", "AB12CD")
	waiter := f.linkedStaff(t, "mesero1", models.RoleWaiter, "AB12CD")
	taco := testutil.CreateProduct(t, f.db, "Taco al Pastor", models.CategoryTacos, "15.00")

	order, err := f.orders.Create(ctx, waiter)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, waiter, AddItemInput{OrderID: order.ID, ProductID: taco.ID, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityProducts, taco.ID), ErrEntityInUse)
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, waiter.UserID), ErrEntityInUse)
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, admin.UserID), ErrProtectedEntity)
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, 9999), ErrEntityNotFound)
}

func TestAdminDeleteUserDropsLinks(t *testing.T) {
	svc, f, admin := newAdminSetup(t)
	cook := f.kitchen(t, "cocina1", "AB12CD")
	cashier := f.linkedStaff(t, "caja1", models.RoleCashier, "AB12CD")

	require.NoError(t, svc.Delete(ctx, admin, EntityUsers, cashier.UserID))
	require.NoError(t, svc.Delete(ctx, admin, EntityUsers, cook.UserID))

	var links, kitchens int64
	require.NoError(t, f.db.Model(&models.PairingLink{}).Count(&links).Error)
	require.NoError(t, f.db.Model(&models.KitchenAccount{}).Count(&kitchens).Error)
	assert.Zero(t, links)
	assert.Zero(t, kitchens)
}

func TestAdminDeleteKitchenUnlinksStaff(t *testing.T) {
	svc, f, admin := newAdminSetup(t)
	f.kitchen(t, "cocina1", "AB12CD")
	cook := f.kitchen(t, "cocina2", "ZZ99ZZ")
	waiter := f.linkedStaff(t, "mesero1", models.RoleWaiter, "ZZ99ZZ")
	cashier := f.linkedStaff(t, "caja1", models.RoleCashier, "ZZ99ZZ")
	other := f.linkedStaff(t, "mesero2", models.RoleWaiter, "AB12CD")
	taco := testutil.CreateProduct(t, f.db, "Taco al Pastor", models.CategoryTacos, "15.00")

	order, err := f.orders.Create(ctx, waiter)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, waiter, AddItemInput{OrderID: order.ID, ProductID: taco.ID, Quantity: 1})
	require.NoError(t, err)

	// open orders keep the kitchen alive
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, cook.UserID), ErrEntityInUse)
	_, err = f.orders.Submit(ctx, waiter, order.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, cook.UserID), ErrEntityInUse)
	_, err = f.orders.MarkServed(ctx, cook, order.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, admin, EntityUsers, cook.UserID), ErrEntityInUse)
	_, linked, err := f.pairings.Current(ctx, waiter.UserID)
	require.NoError(t, err)
	assert.True(t, linked)

	_, err = f.orders.Close(ctx, cashier, order.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, EntityUsers, cook.UserID))

	_, err = f.kitchens.LookupByCode(ctx, "ZZ99ZZ")
	assert.ErrorIs(t, err, ErrKitchenNotFound)
	for _, staff := range []Actor{waiter, cashier} {
		_, linked, err := f.pairings.Current(ctx, staff.UserID)
		require.NoError(t, err)
		assert.False(t, linked, staff.Username)
	}
	_, err = f.orders.Create(ctx, waiter)
	assert.ErrorIs(t, err, ErrNotLinked)

	code, linked, err := f.pairings.Current(ctx, other.UserID)
	require.NoError(t, err)
	assert.True(t, linked)
	assert.Equal(t, "AB12CD", code)

	// closed orders keep their frozen code
	assert.Equal(t, "ZZ99ZZ", reload(t, f, order.ID).KitchenCode)
}

func TestAdminRoleChangeReleasesPairing(t *testing.T) {
	svc, f, admin := newAdminSetup(t)
	cook := f.kitchen(t, "cocina1", "AB12CD")
	waiter := f.linkedStaff(t, "mesero1", models.RoleWaiter, "AB12CD")
	cashier := f.linkedStaff(t, "caja1", models.RoleCashier, "AB12CD")
	server := f.linkedStaff(t, "mesero2", models.RoleWaiter, "AB12CD")

	// same role is a no-op
	role := models.RoleCashier
	_, err := svc.UpdateUser(ctx, admin, cashier.UserID, UserUpdate{Role: &role})
	require.NoError(t, err)
	_, linked, err := f.pairings.Current(ctx, cashier.UserID)
	require.NoError(t, err)
	assert.True(t, linked)

	_, err = svc.UpdateUser(ctx, admin, waiter.UserID, UserUpdate{Role: &role})
	require.NoError(t, err)
	_, linked, err = f.pairings.Current(ctx, waiter.UserID)
	require.NoError(t, err)
	assert.False(t, linked)

	order, err := f.orders.Create(ctx, server)
	require.NoError(t, err)
	role = models.RoleWaiter
	_, err = svc.UpdateUser(ctx, admin, cook.UserID, UserUpdate{Role: &role})
	assert.ErrorIs(t, err, ErrEntityInUse)
	var user models.User
	require.NoError(t, f.db.First(&user, cook.UserID).Error)
	assert.Equal(t, models.RoleKitchen, user.Role)

	require.NoError(t, f.orders.Cancel(ctx, server, order.ID))
	_, err = svc.UpdateUser(ctx, admin, cook.UserID, UserUpdate{Role: &role})
	require.NoError(t, err)

	var accounts, links int64
	require.NoError(t, f.db.Model(&models.KitchenAccount{}).Count(&accounts).Error)
	require.NoError(t, f.db.Model(&models.PairingLink{}).Count(&links).Error)
	assert.Zero(t, accounts)
	assert.Zero(t, links)
}

func TestAdminUpdateUser(t *testing.T) {
	svc, f, admin := newAdminSetup(t)
	waiter := f.actor(t, "mesero1", models.RoleWaiter)
	f.actor(t, "caja1", models.RoleCashier)

	role := models.RoleCashier
	name := "caja2"
	user, err := svc.UpdateUser(ctx, admin, waiter.UserID, UserUpdate{Username: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "caja2", user.Username)
	assert.Equal(t, models.RoleCashier, user.Role)

	taken := "caja1"
	_, err = svc.UpdateUser(ctx, admin, waiter.UserID, UserUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrUserExists)

	bad := models.Role("chef")
	_, err = svc.UpdateUser(ctx, admin, waiter.UserID, UserUpdate{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminTables(t *testing.T) {
	svc, _, admin := newAdminSetup(t)

	table, err := svc.CreateTable(ctx, admin, TableInput{Name: "Terraza 1"})
	require.NoError(t, err)
	assert.Equal(t, 4, table.Capacity)
	assert.Equal(t, models.TableAvailable, table.Status)

	status := models.TableOccupied
	capacity := 6
	updated, err := svc.UpdateTable(ctx, admin, table.ID, TableUpdate{Status: &status, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, updated.Status)
	assert.Equal(t, 6, updated.Capacity)

	list, err := svc.List(ctx, admin, EntityTables)
	require.NoError(t, err)
	tables := *list.(*[]models.Table)
	require.Len(t, tables, 1)
	assert.Equal(t, "Terraza 1", tables[0].Name)

	dirty := models.TableStatus("dirty")
	_, err = svc.UpdateTable(ctx, admin, table.ID, TableUpdate{Status: &dirty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, admin, EntityTables, table.ID))
}
