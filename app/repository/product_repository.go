package repository

import (
	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// SellableIDs checks all referenced products in one batched query.
func (r *productRepository) SellableIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.Model(&models.Product{}).
		Scopes(models.SellableProducts).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}
