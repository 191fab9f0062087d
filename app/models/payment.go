package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment records one successful gateway settlement for a proposal. The unique
// index on ExternalPaymentID is what makes webhook redelivery a no-op.
type Payment struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProposalID        string    `gorm:"type:varchar(36);not null;index" json:"proposalId"`
	Proposal          *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
	ExternalPaymentID string    `gorm:"uniqueIndex;type:varchar(191);not null" json:"externalPaymentId"`
	Amount            float64   `gorm:"not null" json:"amount"`
	Currency          string    `gorm:"type:varchar(10);not null" json:"currency"`
	Status            string    `gorm:"type:varchar(32);not null" json:"status"`
	PaymentMethod     string    `gorm:"type:varchar(50)" json:"paymentMethod"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
