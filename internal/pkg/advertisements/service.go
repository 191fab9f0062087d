package advertisements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/listing"
)

const (
	listCacheTTL   = 60 * time.Second
	singleCacheTTL = 120 * time.Second
)

// SubmitInput is an already-validated creative submission. CustomFields holds
// the scalar form values; Files the stored upload references.
type SubmitInput struct {
	ProposalProductID string            `json:"proposalProductId" validate:"required,uuid4"`
	AdDate            time.Time         `json:"adDate" validate:"required"`
	AdTime            time.Time         `json:"adTime" validate:"required"`
	CustomFields      map[string]string `json:"customFields"`
	Files             []UploadedFile    `json:"-"`
}

// ListResult is the cached client-scoped advertisement list payload.
type ListResult struct {
	Advertisements []models.Advertisement `json:"advertisements"`
	Pagination     listing.Pagination     `json:"pagination"`
}

// Service is the credit consumption gate: it validates a submission against
// the owning proposal chain and spends exactly one unit of the line item's
// quantity atomically with the advertisement insert.
type Service struct {
	db      *gorm.DB
	cache   cache.Accessor
	clients repository.ClientRepository
}

func NewService(db *gorm.DB, ca cache.Accessor, repos *repository.Repositories) *Service {
	return &Service{db: db, cache: ca, clients: repos.Client}
}

// Submit runs the full validation chain in order, short-circuiting on the
// first failure, then inserts the advertisement and decrements the line item
// quantity in one transaction. The decrement is a conditional atomic update so
// two concurrent submissions can never double-spend the last credit.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*models.Advertisement, error) {
	client, err := s.clients.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeInvalidClient, "Client not found for user")
		}
		return nil, err
	}

	var item models.ProposalProduct
	err = s.db.WithContext(ctx).
		Preload("Proposal").
		Preload("Product").
		Preload("Publisher").
		First(&item, "id = ?", in.ProposalProductID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "ProposalProduct not found")
		}
		return nil, err
	}

	if item.Proposal == nil || item.Proposal.IsDeleted {
		return nil, apperror.New(apperror.CodeInvalidProposal, "Proposal deleted")
	}
	if item.Proposal.ClientID != client.ID {
		return nil, apperror.New(apperror.CodeUnauthorized, "Unauthorized")
	}
	if item.Product == nil || item.Product.IsDeleted || !item.Product.Status {
		return nil, apperror.New(apperror.CodeInvalidProduct, "Invalid product")
	}
	if item.Publisher == nil || item.Publisher.IsDeleted {
		return nil, apperror.New(apperror.CodeInvalidPublisher, "Invalid publisher")
	}
	if item.Quantity <= 0 {
		return nil, apperror.New(apperror.CodeNoCredits, "No credits left")
	}

	customData, err := mergeCustomData(in.CustomFields, in.Files)
	if err != nil {
		return nil, err
	}

	ad := &models.Advertisement{
		ProposalProductID: item.ID,
		AdDate:            in.AdDate,
		AdTime:            in.AdTime,
		CustomData:        customData,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ad).Error; err != nil {
			return err
		}
		res := tx.Model(&models.ProposalProduct{}).
			Where("id = ? AND quantity > 0", item.ID).
			UpdateColumn("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race for the last credit; roll back the insert.
			return apperror.New(apperror.CodeNoCredits, "No credits left")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.SafeDelPattern(ctx, s.cache, fmt.Sprintf("ads:list:%s:*", client.ID))
	return ad, nil
}

// List returns the requesting client's advertisements, newest first. Ownership
// is enforced through the proposal join, not trusted from the caller.
func (s *Service) List(ctx context.Context, userID string, q listing.Query) (*ListResult, error) {
	client, err := s.clients.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeInvalidClient, "Client not found for user")
		}
		return nil, err
	}

	q = q.Normalize()
	key := fmt.Sprintf("ads:list:%s:page=%d:limit=%d", client.ID, q.Page, q.Limit)
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached ListResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	base := s.db.WithContext(ctx).Model(&models.Advertisement{}).
		Joins("JOIN proposal_products ON proposal_products.id = advertisements.proposal_product_id").
		Joins("JOIN proposals ON proposals.id = proposal_products.proposal_id").
		Where("advertisements.is_deleted = ? AND proposals.client_id = ?", false, client.ID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Advertisement
	err = base.Session(&gorm.Session{}).
		Preload("ProposalProduct").
		Preload("ProposalProduct.Proposal").
		Preload("ProposalProduct.Product").
		Preload("ProposalProduct.Publisher").
		Order("advertisements.created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Advertisements: rows,
		Pagination:     listing.NewPagination(total, q),
	}
	if raw, err := json.Marshal(result); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), listCacheTTL)
	}
	return result, nil
}

// GetByID returns one advertisement, re-checking that it belongs to the
// requesting client's proposal.
func (s *Service) GetByID(ctx context.Context, userID, id string) (*models.Advertisement, error) {
	client, err := s.clients.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeInvalidClient, "Client not found for user")
		}
		return nil, err
	}

	// The key is scoped by client so a cache hit can never leak another
	// tenant's creative.
	key := fmt.Sprintf("ads:single:%s:%s", client.ID, id)
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached models.Advertisement
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	var ad models.Advertisement
	err = s.db.WithContext(ctx).
		Preload("ProposalProduct").
		Preload("ProposalProduct.Proposal").
		Preload("ProposalProduct.Product").
		Preload("ProposalProduct.Publisher").
		First(&ad, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Advertisement not found")
		}
		return nil, err
	}

	if ad.ProposalProduct == nil || ad.ProposalProduct.Proposal == nil ||
		ad.ProposalProduct.Proposal.ClientID != client.ID {
		return nil, apperror.New(apperror.CodeUnauthorized, "Unauthorized")
	}

	if raw, err := json.Marshal(ad); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), singleCacheTTL)
	}
	return &ad, nil
}

// mergeCustomData folds scalar fields and the grouped file references into one
// JSON object keyed by field name.
func mergeCustomData(fields map[string]string, files []UploadedFile) (datatypes.JSON, error) {
	merged := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		merged[k] = v
	}
	for field, paths := range BuildFileMap(files) {
		merged[field] = paths
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
