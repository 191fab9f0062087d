package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProposalStatusPending  = "Pending"
	ProposalStatusApproved = "Approved"
	ProposalStatusRejected = "Rejected"
	ProposalStatusSent     = "Sent"
	ProposalStatusPaid     = "Paid"

	PaymentStatusUnpaid   = "Unpaid"
	PaymentStatusPaid     = "Paid"
	PaymentStatusCanceled = "Canceled"
)

// Proposal is the aggregate root over its ProposalProduct line items. Once the
// composite status reaches Paid the whole aggregate is immutable.
type Proposal struct {
	ID             string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientID       string            `gorm:"type:varchar(36);not null;index" json:"clientId"`
	Client         *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProposalName   string            `gorm:"type:varchar(200);not null" json:"proposalName" validate:"required,max=200"`
	CcEmail        *string           `gorm:"type:varchar(200)" json:"ccEmail,omitempty"`
	ProposalStatus string            `gorm:"type:varchar(20);default:'Pending';index" json:"proposalStatus"`
	PaymentStatus  string            `gorm:"type:varchar(20);default:'Unpaid';index" json:"paymentStatus"`
	Products       []ProposalProduct `gorm:"foreignKey:ProposalID" json:"products,omitempty"`
	IsDeleted      bool              `gorm:"default:false;index" json:"isDeleted"`
	CreatedAt      time.Time         `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Proposal) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Editable reports whether the aggregate may still be mutated. Paid proposals
// are locked regardless of which of the two status fields flipped first.
func (p *Proposal) Editable() bool {
	return p.PaymentStatus != PaymentStatusPaid && p.ProposalStatus != ProposalStatusPaid
}

// VisibleProposals scopes a query to non-deleted proposals.
func VisibleProposals(db *gorm.DB) *gorm.DB {
	return db.Where("proposals.is_deleted = ?", false)
}

// ProposalProduct is a priced quantity of one product from one publisher within
// one proposal. Quantity is a spendable credit pool: each submitted
// advertisement consumes exactly one unit and the value never drops below zero.
// Total is price x quantity at commitment time, not recomputed live.
type ProposalProduct struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProposalID  string     `gorm:"type:varchar(36);not null;index:ux_proposal_products_key,unique,priority:1" json:"proposalId"`
	Proposal    *Proposal  `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
	PublisherID string     `gorm:"type:varchar(36);not null;index:ux_proposal_products_key,unique,priority:2" json:"publisherId"`
	Publisher   *Publisher `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	ProductID   string     `gorm:"type:varchar(36);not null;index:ux_proposal_products_key,unique,priority:3" json:"productId"`
	Product     *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	Price       float64    `gorm:"not null" json:"price"`
	Total       float64    `gorm:"not null" json:"total"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (pp *ProposalProduct) BeforeCreate(_ *gorm.DB) error {
	if pp.ID == "" {
		pp.ID = uuid.NewString()
	}
	return nil
}

// Key is the reconciliation identity of a line item within its proposal.
func (pp *ProposalProduct) Key() string {
	return pp.PublisherID + "|" + pp.ProductID
}
