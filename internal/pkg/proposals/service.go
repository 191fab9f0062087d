package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/listing"
)

const (
	listCacheTTL = 60 * time.Second
	byIDCacheTTL = 300 * time.Second

	listCachePattern = "proposals:*"
)

// Service owns the Proposal aggregate: creation, reads, the reconciled update
// path and soft deletion. All multi-row writes run in one transaction; cache
// invalidation happens only after the transaction commits.
type Service struct {
	db         *gorm.DB
	cache      cache.Accessor
	clients    repository.ClientRepository
	products   repository.ProductRepository
	publishers repository.PublisherRepository
}

func NewService(db *gorm.DB, ca cache.Accessor, repos *repository.Repositories) *Service {
	return &Service{
		db:         db,
		cache:      ca,
		clients:    repos.Client,
		products:   repos.Product,
		publishers: repos.Publisher,
	}
}

func byIDCacheKey(id string) string {
	return "proposal:id=" + id
}

func listCacheKey(q ListQuery) string {
	from, to := "", ""
	if q.FromDate != nil {
		from = q.FromDate.Format(time.RFC3339)
	}
	if q.ToDate != nil {
		to = q.ToDate.Format(time.RFC3339)
	}
	return fmt.Sprintf("proposals:client=%s:page=%d:limit=%d:search=%s:from=%s:to=%s",
		q.ClientID, q.Page, q.Limit, q.Search, from, to)
}

// Create validates all references and inserts the proposal with its line items
// in one transaction. The created proposal is returned without nested items.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Proposal, error) {
	if err := s.validateReferences(in.ClientID, in.Items); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		ClientID:       in.ClientID,
		ProposalName:   in.ProposalName,
		CcEmail:        in.CcEmail,
		ProposalStatus: models.ProposalStatusPending,
		PaymentStatus:  models.PaymentStatusUnpaid,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(proposal).Error; err != nil {
			return err
		}
		items := make([]models.ProposalProduct, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.ProposalProduct{
				ProposalID:  proposal.ID,
				PublisherID: it.PublisherID,
				ProductID:   it.ProductID,
				Quantity:    it.Quantity,
				Price:       it.Price,
				Total:       it.Total,
			})
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeDuplicateEntry, "Unique constraint failed")
		}
		return nil, err
	}

	cache.SafeDelPattern(ctx, s.cache, listCachePattern)
	return proposal, nil
}

// List returns non-deleted proposals filtered by free-text search and creation
// date range, newest first, each row enriched with the aggregated line total.
// The result is cached briefly under the full filter tuple.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q.Query = q.Query.Normalize()

	key := listCacheKey(q)
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached ListResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	base := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Scopes(models.VisibleProposals).
		Joins("JOIN clients ON clients.id = proposals.client_id")
	if q.ClientID != "" {
		base = base.Where("proposals.client_id = ?", q.ClientID)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where(
			"LOWER(proposals.proposal_name) LIKE LOWER(?) OR LOWER(clients.account_name) LIKE LOWER(?) OR LOWER(clients.email) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}
	if q.FromDate != nil {
		base = base.Where("proposals.created_at >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		base = base.Where("proposals.created_at <= ?", *q.ToDate)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Proposal
	err := base.Session(&gorm.Session{}).
		Preload("Client").
		Order("proposals.created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	totals, err := s.totalsByProposal(ctx, proposalIDs(rows))
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(rows))
	for _, p := range rows {
		summary := Summary{
			ID:             p.ID,
			ClientID:       p.ClientID,
			ProposalName:   p.ProposalName,
			ProposalStatus: p.ProposalStatus,
			PaymentStatus:  p.PaymentStatus,
			TotalAmount:    totals[p.ID],
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		}
		if p.Client != nil {
			summary.Client = ClientInfo{
				ID:          p.Client.ID,
				AccountName: p.Client.AccountName,
				Email:       p.Client.Email,
				Logo:        p.Client.Logo,
				Phone:       p.Client.Phone,
			}
		}
		summaries = append(summaries, summary)
	}

	result := &ListResult{
		Proposals:  summaries,
		Pagination: listing.NewPagination(total, q.Query),
	}
	if raw, err := json.Marshal(result); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), listCacheTTL)
	}
	return result, nil
}

// GetByID returns a proposal with nested line items including publisher and
// product names and the owning client. Soft-deleted proposals are invisible.
func (s *Service) GetByID(ctx context.Context, id string) (*Detail, error) {
	key := byIDCacheKey(id)
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached Detail
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	proposal, err := s.loadAggregate(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Proposal: *proposal}
	for _, item := range proposal.Products {
		detail.TotalAmount += item.Total
	}

	if raw, err := json.Marshal(detail); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), byIDCacheTTL)
	}
	return detail, nil
}

// Update applies partial scalar changes and, when a line-item list is present,
// reconciles it as a full replacement. Paid proposals are immutable.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Proposal, error) {
	var existing models.Proposal
	err := s.db.WithContext(ctx).Scopes(models.VisibleProposals).
		Preload("Products").
		First(&existing, "proposals.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Proposal not found")
		}
		return nil, err
	}

	if !existing.Editable() {
		return nil, apperror.New(apperror.CodeEditBlocked, "Cannot edit a proposal that has already been paid")
	}

	if in.Items != nil {
		if err := s.validateReferences(existing.ClientID, in.Items); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if in.ProposalName != nil {
		updates["proposal_name"] = *in.ProposalName
	}
	if in.CcEmail != nil {
		updates["cc_email"] = *in.CcEmail
	}
	if in.ProposalStatus != nil {
		updates["proposal_status"] = *in.ProposalStatus
	}
	if in.PaymentStatus != nil {
		updates["payment_status"] = *in.PaymentStatus
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Items == nil {
			return nil
		}
		return applyReconcile(tx, Reconcile(existing.ID, existing.Products, in.Items))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeDuplicateEntry, "Unique constraint failed")
		}
		return nil, err
	}

	cache.SafeDelPattern(ctx, s.cache, byIDCacheKey(id))
	cache.SafeDelPattern(ctx, s.cache, listCachePattern)

	return s.reload(ctx, id)
}

// Delete soft-deletes a proposal. Rows are never physically removed so payment
// and advertisement history stays resolvable.
func (s *Service) Delete(ctx context.Context, id string) error {
	var existing models.Proposal
	err := s.db.WithContext(ctx).Scopes(models.VisibleProposals).First(&existing, "proposals.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.CodeNotFound, "Proposal not found")
		}
		return err
	}

	err = s.db.WithContext(ctx).Model(&existing).Update("is_deleted", true).Error
	if err != nil {
		return err
	}

	cache.SafeDelPattern(ctx, s.cache, byIDCacheKey(id))
	cache.SafeDelPattern(ctx, s.cache, listCachePattern)
	return nil
}

// applyReconcile executes a reconciliation plan inside tx: creates, then
// updates, then deletes.
func applyReconcile(tx *gorm.DB, ops ReconcileOps) error {
	if len(ops.Creates) > 0 {
		if err := tx.Create(&ops.Creates).Error; err != nil {
			return err
		}
	}
	for _, up := range ops.Updates {
		err := tx.Model(&models.ProposalProduct{}).Where("id = ?", up.ID).Updates(map[string]interface{}{
			"quantity": up.Quantity,
			"price":    up.Price,
			"total":    up.Total,
		}).Error
		if err != nil {
			return err
		}
	}
	if len(ops.Deletes) > 0 {
		if err := tx.Where("id IN ?", ops.Deletes).Delete(&models.ProposalProduct{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadAggregate(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.WithContext(ctx).Scopes(models.VisibleProposals).
		Preload("Client").
		Preload("Products").
		Preload("Products.Publisher").
		Preload("Products.Product").
		First(&proposal, "proposals.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Proposal not found")
		}
		return nil, err
	}
	return &proposal, nil
}

func (s *Service) reload(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.db.WithContext(ctx).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// totalsByProposal sums line-item totals grouped by proposal in one query and
// merges client-side by id, keeping the base list query cheap.
func (s *Service) totalsByProposal(ctx context.Context, ids []string) (map[string]float64, error) {
	totals := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return totals, nil
	}

	var rows []struct {
		ProposalID  string
		TotalAmount float64
	}
	err := s.db.WithContext(ctx).Model(&models.ProposalProduct{}).
		Select("proposal_id, SUM(total) AS total_amount").
		Where("proposal_id IN ?", ids).
		Group("proposal_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		totals[row.ProposalID] = row.TotalAmount
	}
	return totals, nil
}

func proposalIDs(rows []models.Proposal) []string {
	ids := make([]string, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	return ids
}
