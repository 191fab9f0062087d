package proposals

import (
	"time"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/listing"
)

// LineItemInput is one desired line item in a create or full-replacement
// update. Quantity is the credit pool committed for the pair.
type LineItemInput struct {
	PublisherID string  `json:"publisherId" validate:"required,uuid4"`
	ProductID   string  `json:"productId" validate:"required,uuid4"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"min=0"`
	Total       float64 `json:"total" validate:"min=0"`
}

// CreateInput carries an already-validated proposal create request.
type CreateInput struct {
	ClientID     string          `json:"clientId" validate:"required,uuid4"`
	ProposalName string          `json:"proposalName" validate:"required,max=200"`
	CcEmail      *string         `json:"ccEmail" validate:"omitempty,email"`
	Items        []LineItemInput `json:"products" validate:"required,min=1,dive"`
}

// UpdateInput carries partial scalar updates plus an optional full-replacement
// line-item list. A nil Items leaves line items untouched; a non-nil Items is
// destructive by omission.
type UpdateInput struct {
	ProposalName   *string         `json:"proposalName" validate:"omitempty,max=200"`
	CcEmail        *string         `json:"ccEmail" validate:"omitempty,email"`
	ProposalStatus *string         `json:"proposalStatus" validate:"omitempty,oneof=Pending Approved Rejected Sent Paid"`
	PaymentStatus  *string         `json:"paymentStatus" validate:"omitempty,oneof=Unpaid Paid Canceled"`
	Items          []LineItemInput `json:"products" validate:"omitempty,min=1,dive"`
}

// ListQuery filters the proposal list. ClientID scopes the result to one
// client's proposals (client portal); empty means all clients (admin).
type ListQuery struct {
	listing.Query
	ClientID string
}

// ClientInfo is the owning client slice embedded in list rows.
type ClientInfo struct {
	ID          string `json:"id"`
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
	Logo        string `json:"logo"`
	Phone       string `json:"phone"`
}

// Summary is one proposal list row, enriched with the aggregated line total.
type Summary struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"clientId"`
	ProposalName   string     `json:"proposalName"`
	ProposalStatus string     `json:"proposalStatus"`
	PaymentStatus  string     `json:"paymentStatus"`
	TotalAmount    float64    `json:"totalAmount"`
	Client         ClientInfo `json:"client"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ListResult is the cached list payload.
type ListResult struct {
	Proposals  []Summary          `json:"proposals"`
	Pagination listing.Pagination `json:"pagination"`
}

// Detail is the by-id payload: the proposal with nested line items (publisher
// and product names preloaded) and the computed total.
type Detail struct {
	models.Proposal
	TotalAmount float64 `json:"totalAmount"`
}
