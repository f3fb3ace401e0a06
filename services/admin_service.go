package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

// EntityKind names a resource the admin panel can manage.
type EntityKind string

const (
	EntityUsers    EntityKind = "users"
	EntityProducts EntityKind = "products"
	EntityTables   EntityKind = "tables"
)

// PrimaryAdminID is the seeded administrator, which can never be deleted.
const PrimaryAdminID uint = 1

func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(strings.ToLower(strings.TrimSpace(s))); k {
	case EntityUsers, EntityProducts, EntityTables:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntity, s)
}

type ProductInput struct {
	Name        string
	Category    models.ProductCategory
	Price       decimal.Decimal
	Stock       *int
	Description string
}

type TableInput struct {
	Name     string
	Capacity int
	Status   models.TableStatus
}

// UserUpdate, ProductUpdate and TableUpdate hold partial updates. Nil fields
// are left untouched.
type UserUpdate struct {
	Username *string
	Role     *models.Role
	IsActive *bool
}

type ProductUpdate struct {
	Name     *string
	Category *models.ProductCategory
	Price    *decimal.Decimal
	Stock    *int
	IsActive *bool
}

type TableUpdate struct {
	Name     *string
	Capacity *int
	Status   *models.TableStatus
}

type AdminService struct {
	DB    *gorm.DB
	Audit *AuditRecorder
	Now   func() time.Time
}

func NewAdminService(db *gorm.DB, audit *AuditRecorder) *AdminService {
	return &AdminService{DB: db, Audit: audit, Now: time.Now}
}

func (s *AdminService) List(ctx context.Context, actor Actor, kind EntityKind) (interface{}, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx).Order("id asc")

	var dest interface{}
	switch kind {
	case EntityUsers:
		dest = &[]models.User{}
	case EntityProducts:
		dest = &[]models.Product{}
	case EntityTables:
		dest = &[]models.Table{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	}
	if err := db.Find(dest).Error; err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *AdminService) Get(ctx context.Context, actor Actor, kind EntityKind, id uint) (interface{}, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	dest, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := first(s.DB.WithContext(ctx), dest, id); err != nil {
		return nil, err
	}
	return dest, nil
}

func (s *AdminService) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*models.Product, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}

	product := models.Product{
		Name:        name,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    true,
		Description: in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "created", EntityProducts, product.ID)
	return &product, nil
}

func (s *AdminService) CreateTable(ctx context.Context, actor Actor, in TableInput) (*models.Table, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: table name is required", ErrInvalidInput)
	}
	if in.Capacity == 0 {
		in.Capacity = 4
	}
	if in.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = models.TableAvailable
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown table status %q", ErrInvalidInput, in.Status)
	}

	table := models.Table{Name: name, Capacity: in.Capacity, Status: in.Status}
	if err := s.DB.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "created", EntityTables, table.ID)
	return &table, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, actor Actor, id uint, in UserUpdate) (*models.User, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
		}
		updates["username"] = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, &user, id); err != nil {
			return err
		}
		if in.Role != nil && *in.Role != user.Role {
			if err := releaseRole(tx, &user); err != nil {
				return err
			}
		}
		return s.apply(tx, &user, id, updates)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.audit(ctx, actor, "updated", EntityUsers, id)
	return &user, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, actor Actor, id uint, in ProductUpdate) (*models.Product, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
		}
		updates["name"] = name
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *in.Category)
		}
		updates["category"] = *in.Category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		updates["price"] = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
		}
		updates["stock"] = *in.Stock
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	var product models.Product
	if err := s.update(ctx, &product, id, updates); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "updated", EntityProducts, id)
	return &product, nil
}

func (s *AdminService) UpdateTable(ctx context.Context, actor Actor, id uint, in TableUpdate) (*models.Table, error) {
	if err := actor.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: table name is required", ErrInvalidInput)
		}
		updates["name"] = name
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
		}
		updates["capacity"] = *in.Capacity
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown table status %q", ErrInvalidInput, *in.Status)
		}
		updates["status"] = *in.Status
	}

	var table models.Table
	if err := s.update(ctx, &table, id, updates); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "updated", EntityTables, id)
	return &table, nil
}

// Delete removes an entity. The primary admin is protected, and users or
// products still referenced by orders are refused. Deleting a cocina user
// unlinks every staff member paired to its code.
func (s *AdminService) Delete(ctx context.Context, actor Actor, kind EntityKind, id uint) error {
	if err := actor.require(models.RoleAdmin); err != nil {
		return err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch kind {
		case EntityUsers:
			if id == PrimaryAdminID {
				return ErrProtectedEntity
			}
			if err := first(tx, &models.User{}, id); err != nil {
				return err
			}
			if err := refuseIfReferenced(tx, &models.Order{}, "waiter_id = ?", id); err != nil {
				return err
			}
			if err := tx.Where("staff_user_id = ?", id).Delete(&models.PairingLink{}).Error; err != nil {
				return err
			}
			if err := releaseKitchen(tx, id); err != nil {
				return err
			}
			return tx.Delete(&models.User{}, id).Error
		case EntityProducts:
			if err := first(tx, &models.Product{}, id); err != nil {
				return err
			}
			if err := refuseIfReferenced(tx, &models.OrderItem{}, "product_id = ?", id); err != nil {
				return err
			}
			return tx.Delete(&models.Product{}, id).Error
		case EntityTables:
			if err := first(tx, &models.Table{}, id); err != nil {
				return err
			}
			return tx.Delete(&models.Table{}, id).Error
		}
		return fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, actor, "deleted", kind, id)
	return nil
}

func (s *AdminService) update(ctx context.Context, dest interface{}, id uint, updates map[string]interface{}) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := first(tx, dest, id); err != nil {
			return err
		}
		return s.apply(tx, dest, id, updates)
	})
}

// apply writes updates to an already loaded dest and reloads it.
func (s *AdminService) apply(tx *gorm.DB, dest interface{}, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = s.Now()
	if err := tx.Model(dest).Updates(updates).Error; err != nil {
		return err
	}
	return tx.First(dest, id).Error
}

// releaseRole drops what a user held under its current role before the role
// changes: a cocina user loses its kitchen account, a waiter or cashier its link.
func releaseRole(tx *gorm.DB, user *models.User) error {
	switch user.Role {
	case models.RoleKitchen:
		return releaseKitchen(tx, user.ID)
	case models.RoleWaiter, models.RoleCashier:
		return tx.Where("staff_user_id = ?", user.ID).Delete(&models.PairingLink{}).Error
	}
	return nil
}

// releaseKitchen deletes the kitchen account of userID and every link that
// points at its code. Orders still open against the code keep it alive.
func releaseKitchen(tx *gorm.DB, userID uint) error {
	var account models.KitchenAccount
	err := tx.Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := refuseIfReferenced(tx, &models.Order{}, "kitchen_code = ? AND status <> ?",
		account.Code, models.OrderStatusClosed); err != nil {
		return err
	}
	if err := tx.Where("kitchen_code = ?", account.Code).Delete(&models.PairingLink{}).Error; err != nil {
		return err
	}
	return tx.Delete(&account).Error
}

func (s *AdminService) audit(ctx context.Context, actor Actor, action string, kind EntityKind, id uint) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"entity": kind,
		"id":     id,
		"actor":  actor.String(),
	}).Infof("admin %s entity", action)
	s.Audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     action,
		EntityType: string(kind),
		EntityID:   id,
	})
}

func newEntity(kind EntityKind) (interface{}, error) {
	switch kind {
	case EntityUsers:
		return &models.User{}, nil
	case EntityProducts:
		return &models.Product{}, nil
	case EntityTables:
		return &models.Table{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
}

func first(db *gorm.DB, dest interface{}, id uint) error {
	err := db.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEntityNotFound
	}
	return err
}

func refuseIfReferenced(tx *gorm.DB, model interface{}, query string, args ...interface{}) error {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEntityInUse
	}
	return nil
}
