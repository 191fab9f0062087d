package proposals

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
)

// validateReferences checks every entity a proposal points at before any write:
// the client must exist and be visible, every product must be sellable, and
// every (publisher, product) pair must have a pricing row. All product checks
// run as one batched query.
func (s *Service) validateReferences(clientID string, items []LineItemInput) error {
	if _, err := s.clients.GetByID(clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.CodeNotFound, "Client not found")
		}
		return err
	}

	seen := make(map[string]struct{}, len(items))
	productIDs := make([]string, 0, len(items))
	productSeen := make(map[string]struct{}, len(items))
	pairs := make([]models.PublisherProduct, 0, len(items))

	for _, item := range items {
		key := item.PublisherID + "|" + item.ProductID
		if _, dup := seen[key]; dup {
			return apperror.New(apperror.CodeDuplicateEntry,
				"A proposal cannot contain the same publisher/product pair twice")
		}
		seen[key] = struct{}{}

		if _, ok := productSeen[item.ProductID]; !ok {
			productSeen[item.ProductID] = struct{}{}
			productIDs = append(productIDs, item.ProductID)
		}
		pairs = append(pairs, models.PublisherProduct{
			PublisherID: item.PublisherID,
			ProductID:   item.ProductID,
		})
	}

	found, err := s.products.SellableIDs(productIDs)
	if err != nil {
		return err
	}
	if len(found) != len(productIDs) {
		foundSet := make(map[string]struct{}, len(found))
		for _, id := range found {
			foundSet[id] = struct{}{}
		}
		var invalid []string
		for _, id := range productIDs {
			if _, ok := foundSet[id]; !ok {
				invalid = append(invalid, id)
			}
		}
		sort.Strings(invalid)
		return apperror.Newf(apperror.CodeInvalidProducts,
			"One or more products are invalid or inactive. Invalid IDs: %s", strings.Join(invalid, ", "))
	}

	missing, err := s.publishers.MissingPairs(pairs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.Newf(apperror.CodeInvalidPublisherProduct,
			"Publisher %s does not sell product %s", missing[0].PublisherID, missing[0].ProductID)
	}

	return nil
}
