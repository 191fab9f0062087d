package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publisher is a media outlet with its own price list (PublisherProduct rows).
type Publisher struct {
	ID            string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	PublisherName string             `gorm:"type:varchar(200);not null" json:"publisherName" validate:"required,max=200"`
	Email         string             `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email"`
	PhoneNo       string             `gorm:"type:varchar(20)" json:"phoneNo"`
	WhatsappNo    string             `gorm:"type:varchar(20)" json:"whatsappNo"`
	Logo          string             `gorm:"type:varchar(255)" json:"logo"`
	W9Files       datatypes.JSON     `gorm:"type:json" json:"w9Files"`
	Description   string             `gorm:"type:text" json:"description"`
	Products      []PublisherProduct `gorm:"foreignKey:PublisherID" json:"products,omitempty"`
	IsDeleted     bool               `gorm:"default:false;index" json:"isDeleted"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Publisher) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// W9Paths decodes the ordered W9 document path list.
func (p *Publisher) W9Paths() []string {
	if len(p.W9Files) == 0 {
		return nil
	}
	var paths []string
	if err := json.Unmarshal(p.W9Files, &paths); err != nil {
		return nil
	}
	return paths
}

// SetW9Paths encodes the W9 document path list.
func (p *Publisher) SetW9Paths(paths []string) error {
	raw, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	p.W9Files = datatypes.JSON(raw)
	return nil
}

// VisiblePublishers scopes a query to non-deleted publishers.
func VisiblePublishers(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// PublisherProduct says "this publisher sells this product at this price".
// The (publisher, product) pair is unique; proposal line items are validated
// against these rows.
type PublisherProduct struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PublisherID string    `gorm:"type:varchar(36);not null;index:ux_publisher_products_pair,unique,priority:1" json:"publisherId"`
	ProductID   string    `gorm:"type:varchar(36);not null;index:ux_publisher_products_pair,unique,priority:2" json:"productId"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (pp *PublisherProduct) BeforeCreate(_ *gorm.DB) error {
	if pp.ID == "" {
		pp.ID = uuid.NewString()
	}
	return nil
}
