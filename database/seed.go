package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	defaultTableCount    = 15
)

type seedProduct struct {
	name        string
	category    models.ProductCategory
	price       string
	stock       *int
	description string
}

func stock(n int) *int { return &n }

var defaultProducts = []seedProduct{
	{"Taco al Pastor", models.CategoryTacos, "15.00", stock(100), "Carne de cerdo marinada con especias"},
	{"Taco de Asada", models.CategoryTacos, "18.00", stock(100), "Carne de res asada"},
	{"Taco de Chorizo", models.CategoryTacos, "15.00", stock(100), "Chorizo artesanal"},
	{"Taco de Suadero", models.CategoryTacos, "16.00", stock(100), "Suadero de res"},
	{"Taco de Carnitas", models.CategoryTacos, "17.00", stock(100), "Carnitas estilo Michoacán"},
	{"Taco de Pollo", models.CategoryTacos, "14.00", stock(100), "Pollo marinado"},

	{"Refresco 600ml", models.CategoryBebidas, "20.00", stock(50), "Coca-Cola, Sprite, Fanta"},
	{"Agua de Horchata", models.CategoryBebidas, "15.00", stock(50), "Agua fresca de horchata"},
	{"Agua de Jamaica", models.CategoryBebidas, "15.00", stock(50), "Agua fresca de jamaica"},
	{"Agua de Limón", models.CategoryBebidas, "15.00", stock(50), "Agua fresca de limón"},
	{"Cerveza", models.CategoryBebidas, "35.00", stock(50), "Cerveza nacional"},
	{"Agua Natural", models.CategoryBebidas, "12.00", stock(50), "Agua embotellada"},

	{"Orden de Guacamole", models.CategoryExtras, "40.00", nil, "Guacamole preparado al momento"},
	{"Orden de Frijoles", models.CategoryExtras, "25.00", nil, "Frijoles refritos"},
	{"Orden de Nopales", models.CategoryExtras, "30.00", nil, "Nopales asados"},
	{"Limones Extra", models.CategoryExtras, "5.00", nil, "Porción de limones"},
	{"Salsas Extra", models.CategoryExtras, "10.00", nil, "Variedad de salsas"},

	{"Flan Napolitano", models.CategoryPostres, "35.00", stock(20), "Flan casero"},
	{"Churros (3 pzas)", models.CategoryPostres, "30.00", stock(30), "Churros con azúcar"},
}

// Seed creates the default admin, dining tables and menu. Existing rows are left untouched.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedAdmin(tx); err != nil {
			return err
		}
		if err := seedTables(tx); err != nil {
			return err
		}
		return seedProducts(tx)
	})
}

func seedAdmin(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", DefaultAdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: DefaultAdminUsername,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Default admin created: %s", DefaultAdminUsername)
	return nil
}

func seedTables(tx *gorm.DB) error {
	now := time.Now()
	for i := 1; i <= defaultTableCount; i++ {
		table := models.Table{
			Name:      fmt.Sprintf("Mesa %d", i),
			Capacity:  4,
			Status:    models.TableAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Where(models.Table{Name: table.Name}).FirstOrCreate(&table).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(tx *gorm.DB) error {
	now := time.Now()
	for _, p := range defaultProducts {
		product := models.Product{
			Name:        p.name,
			Category:    p.category,
			Price:       decimal.RequireFromString(p.price),
			Stock:       p.stock,
			IsActive:    true,
			Description: p.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Where(models.Product{Name: p.name}).FirstOrCreate(&product).Error; err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Seed data ready: %d tables, %d products", defaultTableCount, len(defaultProducts))
	return nil
}
