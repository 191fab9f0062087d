package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is an advertising customer. Soft-deleted clients stay in the table for
// historical proposals but are invisible to every lookup.
type Client struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AccountName string    `gorm:"type:varchar(200);not null" json:"accountName" validate:"required,max=200"`
	ContactName string    `gorm:"type:varchar(200)" json:"contactName"`
	Email       string    `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email"`
	Phone       string    `gorm:"type:varchar(20)" json:"phone"`
	Logo        string    `gorm:"type:varchar(255)" json:"logo"`
	UserID      *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	User        *User     `gorm:"foreignKey:UserID" json:"-"`
	IsDeleted   bool      `gorm:"default:false;index" json:"isDeleted"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// VisibleClients scopes a query to non-deleted clients.
func VisibleClients(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
