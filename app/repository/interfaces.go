package repository

import (
	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
}

// ClientRepository defines lookups over non-deleted clients.
type ClientRepository interface {
	GetByID(id string) (*models.Client, error)
	GetByUserID(userID string) (*models.Client, error)
}

// ProductRepository defines catalog lookups used by proposal validation.
type ProductRepository interface {
	// SellableIDs filters ids down to products that exist, are active and are
	// not soft-deleted.
	SellableIDs(ids []string) ([]string, error)
}

// PublisherRepository defines publisher and price-list lookups.
type PublisherRepository interface {
	GetByID(id string) (*models.Publisher, error)
	GetByIDWithProducts(id string) (*models.Publisher, error)
	GetByEmail(email string) (*models.Publisher, error)
	// MissingPairs returns the (publisherId, productId) pairs that have no
	// PublisherProduct pricing row.
	MissingPairs(pairs []models.PublisherProduct) ([]models.PublisherProduct, error)
}

// PaymentRepository defines read access to settled payments.
type PaymentRepository interface {
	List(offset, limit int) ([]models.Payment, error)
	Count() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User      UserRepository
	Client    ClientRepository
	Product   ProductRepository
	Publisher PublisherRepository
	Payment   PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Client:    NewClientRepository(db),
		Product:   NewProductRepository(db),
		Publisher: NewPublisherRepository(db),
		Payment:   NewPaymentRepository(db),
	}
}
