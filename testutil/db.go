// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/taqueria-app/database"
	"github.com/yeremiapane/taqueria-app/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an active user whose password is "secret123".
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateProduct inserts an active product with the given price.
func CreateProduct(t testing.TB, db *gorm.DB, name string, category models.ProductCategory, price string) models.Product {
	t.Helper()

	now := time.Now()
	product := models.Product{
		Name:      name,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// CreateKitchen inserts a kitchen account with a fixed code.
func CreateKitchen(t testing.TB, db *gorm.DB, userID uint, code string) models.KitchenAccount {
	t.Helper()

	account := models.KitchenAccount{UserID: userID, Code: code, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&account).Error)
	return account
}

// Clock is a deterministic time source that advances one second per call.
type Clock struct {
	current time.Time
}

func NewClock() *Clock {
	return &Clock{current: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}
