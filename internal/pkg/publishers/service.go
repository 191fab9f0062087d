package publishers

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
)

// PriceInput is one entry of a publisher's submitted price list.
type PriceInput struct {
	ProductID string  `json:"productId" validate:"required,uuid4"`
	Price     float64 `json:"price" validate:"min=0"`
}

// CreateInput carries a validated publisher create request. Logo and W9 paths
// are already-stored file references produced by the upload layer.
type CreateInput struct {
	PublisherName string       `json:"publisherName" validate:"required,max=200"`
	Email         string       `json:"email" validate:"required,email"`
	PhoneNo       string       `json:"phoneNo"`
	WhatsappNo    string       `json:"whatsappNo"`
	Description   string       `json:"description"`
	Products      []PriceInput `json:"products" validate:"required,min=1,dive"`
	LogoPath      string       `json:"-"`
	W9Paths       []string     `json:"-"`
}

// UpdateInput carries partial scalar changes plus an optional full-replacement
// price list. RemovedW9Files names stored paths to drop; NewW9Paths are
// appended.
type UpdateInput struct {
	PublisherName  *string      `json:"publisherName" validate:"omitempty,max=200"`
	Email          *string      `json:"email" validate:"omitempty,email"`
	PhoneNo        *string      `json:"phoneNo"`
	WhatsappNo     *string      `json:"whatsappNo"`
	Description    *string      `json:"description"`
	Products       []PriceInput `json:"products" validate:"omitempty,dive"`
	RemovedW9Files []string     `json:"removedW9Files"`
	NewW9Paths     []string     `json:"-"`
	LogoPath       *string      `json:"-"`
}

// ListResult is the cached publisher list payload.
type ListResult struct {
	Publishers []models.Publisher `json:"publishers"`
	Pagination listing.Pagination `json:"pagination"`
}

// Service maintains publishers and their price lists. A price-list update is
// the same full-replacement diff the proposal reconciler uses: new pairs are
// created, existing pairs get their price rewritten, omitted pairs are
// deleted.
type Service struct {
	db         *gorm.DB
	cache      cache.Accessor
	publishers repository.PublisherRepository
}

func NewService(db *gorm.DB, ca cache.Accessor, repos *repository.Repositories) *Service {
	return &Service{db: db, cache: ca, publishers: repos.Publisher}
}

// Create inserts the publisher and its initial pricing rows in one
// transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Publisher, error) {
	if _, err := s.publishers.GetByEmail(in.Email); err == nil {
		return nil, apperror.New(apperror.CodeEmailExists, "Publisher with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pub := &models.Publisher{
		PublisherName: in.PublisherName,
		Email:         in.Email,
		PhoneNo:       in.PhoneNo,
		WhatsappNo:    in.WhatsappNo,
		Logo:          in.LogoPath,
		Description:   in.Description,
	}
	if err := pub.SetW9Paths(in.W9Paths); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pub).Error; err != nil {
			return err
		}
		rows := make([]models.PublisherProduct, 0, len(in.Products))
		for _, p := range in.Products {
			rows = append(rows, models.PublisherProduct{
				PublisherID: pub.ID,
				ProductID:   p.ProductID,
				Price:       p.Price,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeDuplicateEntry, "Unique constraint failed")
		}
		return nil, err
	}

	cache.SafeDelPattern(ctx, s.cache, "publishers:*")
	return pub, nil
}

// List returns non-deleted publishers with their price lists.
func (s *Service) List(ctx context.Context, q listing.Query) (*ListResult, error) {
	q = q.Normalize()

	from, to := "", ""
	if q.FromDate != nil {
		from = q.FromDate.Format(time.RFC3339)
	}
	if q.ToDate != nil {
		to = q.ToDate.Format(time.RFC3339)
	}
	key := fmt.Sprintf("publishers:page=%d:limit=%d:search=%s:from=%s:to=%s", q.Page, q.Limit, q.Search, from, to)
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached ListResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	base := s.db.WithContext(ctx).Model(&models.Publisher{}).Scopes(models.VisiblePublishers)
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where("LOWER(publisher_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}
	if q.FromDate != nil {
		base = base.Where("created_at >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		base = base.Where("created_at <= ?", *q.ToDate)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Publisher
	err := base.Session(&gorm.Session{}).
		Preload("Products").
		Preload("Products.Product").
		Order("created_at DESC").
		Offset(q.Offset()).Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Publishers: rows, Pagination: listing.NewPagination(total, q)}
	if raw, err := json.Marshal(result); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), listCacheTTL)
	}
	return result, nil
}

// GetByID returns one publisher with its price list.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Publisher, error) {
	key := "publisher:id=" + id
	if raw, ok := cache.SafeGet(ctx, s.cache, key); ok {
		var cached models.Publisher
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	pub, err := s.publishers.GetByIDWithProducts(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Publisher not found")
		}
		return nil, err
	}

	if raw, err := json.Marshal(pub); err == nil {
		cache.SafeSet(ctx, s.cache, key, string(raw), byIDCacheTTL)
	}
	return pub, nil
}

// Update applies scalar changes, merges the W9 file list (kept minus removed
// plus new) and diffs the submitted price list, all in one transaction.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Publisher, error) {
	existing, err := s.publishers.GetByIDWithProducts(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Publisher not found")
		}
		return nil, err
	}

	if in.Email != nil && *in.Email != existing.Email {
		if _, err := s.publishers.GetByEmail(*in.Email); err == nil {
			return nil, apperror.New(apperror.CodeEmailExists, "Another publisher with this email exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if in.PublisherName != nil {
		updates["publisher_name"] = *in.PublisherName
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.PhoneNo != nil {
		updates["phone_no"] = *in.PhoneNo
	}
	if in.WhatsappNo != nil {
		updates["whatsapp_no"] = *in.WhatsappNo
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.LogoPath != nil {
		updates["logo"] = *in.LogoPath
	}

	if in.RemovedW9Files != nil || in.NewW9Paths != nil {
		removed := make(map[string]struct{}, len(in.RemovedW9Files))
		for _, p := range in.RemovedW9Files {
			removed[p] = struct{}{}
		}
		var final []string
		for _, p := range existing.W9Paths() {
			if _, drop := removed[p]; !drop {
				final = append(final, p)
			}
		}
		final = append(final, in.NewW9Paths...)
		raw, err := json.Marshal(final)
		if err != nil {
			return nil, err
		}
		updates["w9_files"] = raw
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Publisher{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Products == nil {
			return nil
		}
		return reconcilePriceList(tx, id, existing.Products, in.Products)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeDuplicateEntry, "Unique constraint failed")
		}
		return nil, err
	}

	cache.SafeDelPattern(ctx, s.cache, "publisher:id="+id)
	cache.SafeDelPattern(ctx, s.cache, "publishers:*")

	return s.publishers.GetByIDWithProducts(id)
}

// Delete soft-deletes a publisher. Historical proposal line items keep
// resolving against the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.publishers.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.CodeNotFound, "Publisher not found")
		}
		return err
	}

	err = s.db.WithContext(ctx).Model(&models.Publisher{}).
		Where("id = ?", existing.ID).
		Update("is_deleted", true).Error
	if err != nil {
		return err
	}

	cache.SafeDelPattern(ctx, s.cache, "publisher:id="+id)
	cache.SafeDelPattern(ctx, s.cache, "publishers:*")
	return nil
}

// reconcilePriceList diffs the persisted pricing rows against the submitted
// list, keyed by product id within this publisher.
func reconcilePriceList(tx *gorm.DB, publisherID string, existing []models.PublisherProduct, desired []PriceInput) error {
	existingByProduct := make(map[string]string, len(existing))
	for _, row := range existing {
		existingByProduct[row.ProductID] = row.ID
	}

	submitted := make(map[string]struct{}, len(desired))
	var creates []models.PublisherProduct
	for _, p := range desired {
		if _, dup := submitted[p.ProductID]; dup {
			continue
		}
		submitted[p.ProductID] = struct{}{}

		if rowID, ok := existingByProduct[p.ProductID]; ok {
			err := tx.Model(&models.PublisherProduct{}).
				Where("id = ?", rowID).
				Update("price", p.Price).Error
			if err != nil {
				return err
			}
			continue
		}
		creates = append(creates, models.PublisherProduct{
			PublisherID: publisherID,
			ProductID:   p.ProductID,
			Price:       p.Price,
		})
	}

	if len(creates) > 0 {
		if err := tx.Create(&creates).Error; err != nil {
			return err
		}
	}

	var deletes []string
	for _, row := range existing {
		if _, ok := submitted[row.ProductID]; !ok {
			deletes = append(deletes, row.ID)
		}
	}
	if len(deletes) > 0 {
		return tx.Where("id IN ?", deletes).Delete(&models.PublisherProduct{}).Error
	}
	return nil
}
