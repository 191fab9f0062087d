package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Advertisement is one submitted creative. It references (does not own) the
// credit-bearing line item it draws from; creating one consumes exactly one
// unit of that line item's quantity in the same transaction.
type Advertisement struct {
	ID                string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProposalProductID string           `gorm:"type:varchar(36);not null;index" json:"proposalProductId"`
	ProposalProduct   *ProposalProduct `gorm:"foreignKey:ProposalProductID" json:"proposalProduct,omitempty"`
	AdDate            time.Time        `gorm:"not null" json:"adDate"`
	AdTime            time.Time        `gorm:"not null" json:"adTime"`
	CustomData        datatypes.JSON   `gorm:"type:json" json:"customData"`
	IsDeleted         bool             `gorm:"default:false;index" json:"isDeleted"`
	CreatedAt         time.Time        `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a *Advertisement) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
