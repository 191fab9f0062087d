package repository

import (
	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"gorm.io/gorm"
)

type publisherRepository struct {
	db *gorm.DB
}

// NewPublisherRepository creates a new publisher repository instance
func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) GetByID(id string) (*models.Publisher, error) {
	var pub models.Publisher
	err := r.db.Scopes(models.VisiblePublishers).First(&pub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

func (r *publisherRepository) GetByIDWithProducts(id string) (*models.Publisher, error) {
	var pub models.Publisher
	err := r.db.Scopes(models.VisiblePublishers).
		Preload("Products").
		Preload("Products.Product").
		First(&pub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

func (r *publisherRepository) GetByEmail(email string) (*models.Publisher, error) {
	var pub models.Publisher
	err := r.db.Where("email = ?", email).First(&pub).Error
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

// MissingPairs returns the submitted pairs that have no pricing row. One query
// per call regardless of the number of pairs.
func (r *publisherRepository) MissingPairs(pairs []models.PublisherProduct) ([]models.PublisherProduct, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	publisherIDs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		publisherIDs = append(publisherIDs, p.PublisherID)
	}

	var existing []models.PublisherProduct
	err := r.db.Where("publisher_id IN ?", publisherIDs).Find(&existing).Error
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[e.PublisherID+"|"+e.ProductID] = struct{}{}
	}

	var missing []models.PublisherProduct
	for _, p := range pairs {
		if _, ok := known[p.PublisherID+"|"+p.ProductID]; !ok {
			missing = append(missing, p)
		}
	}
	return missing, nil
}
