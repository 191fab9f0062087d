package payments

import (
	"context"
	"errors"
	"log"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
)

// Service creates payment intents for proposals and settles them from webhook
// events. Settlement is idempotent on the gateway payment id.
type Service struct {
	db      *gorm.DB
	cache   cache.Accessor
	gateway Gateway
}

func NewService(db *gorm.DB, ca cache.Accessor, gateway Gateway) *Service {
	return &Service{db: db, cache: ca, gateway: gateway}
}

// CreateIntent computes the settlement amount from the proposal's line items
// and requests a gateway intent carrying the correlation metadata the webhook
// needs later. A proposal that is already paid rejects a second intent.
func (s *Service) CreateIntent(ctx context.Context, proposalID, adminID string) (string, error) {
	var proposal models.Proposal
	err := s.db.WithContext(ctx).Scopes(models.VisibleProposals).
		Preload("Products").
		First(&proposal, "proposals.id = ?", proposalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.New(apperror.CodeNotFound, "Proposal not found")
		}
		return "", err
	}

	if proposal.PaymentStatus == models.PaymentStatusPaid {
		return "", apperror.New(apperror.CodeAlreadyPaid, "Proposal already paid")
	}

	var totalAmount float64
	for _, item := range proposal.Products {
		totalAmount += item.Total
	}
	amountMinor := int64(math.Round(totalAmount * 100))

	intent, err := s.gateway.CreateIntent(ctx, amountMinor, "usd", map[string]string{
		"proposalId": proposalID,
		"adminId":    adminID,
	})
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// HandleSettlement marks the proposal paid and records the payment in one
// transaction. Redelivery of an already-recorded gateway payment id is a
// logged no-op; nothing is re-applied. Cache entries are invalidated only
// after the transaction commits.
func (s *Service) HandleSettlement(ctx context.Context, ev SettlementEvent) error {
	if ev.ProposalID == "" {
		return apperror.New(apperror.CodeInvalidPayload, "Settlement event is missing the proposalId metadata")
	}

	duplicate := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, "id = ?", ev.ProposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.CodeNotFound, "Proposal not found for settlement")
			}
			return err
		}

		payment := models.Payment{
			ProposalID:        ev.ProposalID,
			ExternalPaymentID: ev.ExternalPaymentID,
			Amount:            float64(ev.AmountMinor) / 100,
			Currency:          ev.Currency,
			Status:            ev.Status,
			PaymentMethod:     ev.PaymentMethod,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_payment_id"}},
			DoNothing: true,
		}).Create(&payment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			duplicate = true
			return nil
		}

		return tx.Model(&proposal).Updates(map[string]interface{}{
			"proposal_status": models.ProposalStatusPaid,
			"payment_status":  models.PaymentStatusPaid,
		}).Error
	})
	if err != nil {
		return err
	}

	if duplicate {
		log.Printf("settlement %s already recorded, skipping", ev.ExternalPaymentID)
		return nil
	}

	cache.SafeDelPattern(ctx, s.cache, "proposal:id="+ev.ProposalID)
	cache.SafeDelPattern(ctx, s.cache, "proposals:*")

	log.Printf("proposal %s marked as paid (payment %s)", ev.ProposalID, ev.ExternalPaymentID)
	return nil
}
