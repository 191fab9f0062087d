package proposals

import "github.com/sreevishnu-spericorn/jag-backend/app/models"

// ItemUpdate rewrites the mutable columns of one existing line item.
type ItemUpdate struct {
	ID       string
	Quantity int
	Price    float64
	Total    float64
}

// ReconcileOps is the operation plan produced by Reconcile. Apply order is
// creates, then updates, then deletes, all inside the caller's transaction.
type ReconcileOps struct {
	Creates []models.ProposalProduct
	Updates []ItemUpdate
	Deletes []string
}

// Empty reports whether the plan changes nothing beyond in-place updates.
func (ops ReconcileOps) Empty() bool {
	return len(ops.Creates) == 0 && len(ops.Updates) == 0 && len(ops.Deletes) == 0
}

// Reconcile diffs the persisted line items against a full-replacement desired
// list. Items are matched on (publisherId, productId): a matched pair becomes
// an update of the existing row, an unmatched desired item becomes a create,
// and any existing row whose pair was not resubmitted is deleted. Duplicate
// pairs in the desired list are collapsed to their first occurrence so the
// plan can never create two rows for one pair.
func Reconcile(proposalID string, existing []models.ProposalProduct, desired []LineItemInput) ReconcileOps {
	existingByKey := make(map[string]string, len(existing))
	for _, item := range existing {
		existingByKey[item.Key()] = item.ID
	}

	var ops ReconcileOps
	submitted := make(map[string]struct{}, len(desired))

	for _, in := range desired {
		key := in.PublisherID + "|" + in.ProductID
		if _, dup := submitted[key]; dup {
			continue
		}
		submitted[key] = struct{}{}

		if id, ok := existingByKey[key]; ok {
			ops.Updates = append(ops.Updates, ItemUpdate{
				ID:       id,
				Quantity: in.Quantity,
				Price:    in.Price,
				Total:    in.Total,
			})
			continue
		}
		ops.Creates = append(ops.Creates, models.ProposalProduct{
			ProposalID:  proposalID,
			PublisherID: in.PublisherID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Price:       in.Price,
			Total:       in.Total,
		})
	}

	for _, item := range existing {
		if _, ok := submitted[item.Key()]; !ok {
			ops.Deletes = append(ops.Deletes, item.ID)
		}
	}

	return ops
}
