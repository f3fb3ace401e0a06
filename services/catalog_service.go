package services

import (
	"context"

	"github.com/yeremiapane/taqueria-app/models"
	"gorm.io/gorm"
)

// CatalogService serves the read-only menu and floor views every role sees.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Products returns active products grouped by category, then by name.
func (c *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := c.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category asc").
		Order("name asc").
		Find(&products).Error
	return products, err
}

func (c *CatalogService) Tables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := c.DB.WithContext(ctx).Order("id asc").Find(&tables).Error
	return tables, err
}
