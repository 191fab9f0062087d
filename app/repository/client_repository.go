package repository

import (
	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository instance
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// GetByID returns a non-deleted client by id.
func (r *clientRepository) GetByID(id string) (*models.Client, error) {
	var client models.Client
	err := r.db.Scopes(models.VisibleClients).First(&client, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByUserID resolves the client record backing a login identity.
func (r *clientRepository) GetByUserID(userID string) (*models.Client, error) {
	var client models.Client
	err := r.db.Scopes(models.VisibleClients).Where("user_id = ?", userID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}
