package proposals

import (
	"testing"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
)

func existingItem(id, publisherID, productID string, qty int) models.ProposalProduct {
	return models.ProposalProduct{
		ID:          id,
		ProposalID:  "prop-1",
		PublisherID: publisherID,
		ProductID:   productID,
		Quantity:    qty,
		Price:       10,
		Total:       float64(qty) * 10,
	}
}

func TestReconcile_ResubmittingSameItemsChangesNothingStructurally(t *testing.T) {
	existing := []models.ProposalProduct{
		existingItem("row-a", "pub-1", "prod-1", 2),
		existingItem("row-b", "pub-2", "prod-1", 3),
	}
	desired := []LineItemInput{
		{PublisherID: "pub-1", ProductID: "prod-1", Quantity: 2, Price: 10, Total: 20},
		{PublisherID: "pub-2", ProductID: "prod-1", Quantity: 3, Price: 10, Total: 30},
	}

	ops := Reconcile("prop-1", existing, desired)
	if len(ops.Creates) != 0 || len(ops.Deletes) != 0 {
		t.Fatalf("expected no creates/deletes, got %d/%d", len(ops.Creates), len(ops.Deletes))
	}
	if len(ops.Updates) != 2 {
		t.Fatalf("expected 2 in-place updates, got %d", len(ops.Updates))
	}
	if ops.Updates[0].ID != "row-a" || ops.Updates[1].ID != "row-b" {
		t.Fatalf("updates must target the existing rows, got %+v", ops.Updates)
	}
}

func TestReconcile_MatchedUpdatedUnmatchedCreatedOmittedDeleted(t *testing.T) {
	existing := []models.ProposalProduct{
		existingItem("row-a", "pub-1", "prod-1", 2),
		existingItem("row-b", "pub-2", "prod-1", 3),
	}
	desired := []LineItemInput{
		{PublisherID: "pub-1", ProductID: "prod-1", Quantity: 7, Price: 12, Total: 84},
		{PublisherID: "pub-3", ProductID: "prod-2", Quantity: 1, Price: 50, Total: 50},
	}

	ops := Reconcile("prop-1", existing, desired)

	if len(ops.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(ops.Updates))
	}
	up := ops.Updates[0]
	if up.ID != "row-a" || up.Quantity != 7 || up.Price != 12 || up.Total != 84 {
		t.Fatalf("unexpected update: %+v", up)
	}

	if len(ops.Creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(ops.Creates))
	}
	cr := ops.Creates[0]
	if cr.ProposalID != "prop-1" || cr.PublisherID != "pub-3" || cr.ProductID != "prod-2" {
		t.Fatalf("unexpected create: %+v", cr)
	}

	if len(ops.Deletes) != 1 || ops.Deletes[0] != "row-b" {
		t.Fatalf("expected row-b to be deleted, got %v", ops.Deletes)
	}
}

func TestReconcile_DuplicatePairsCollapseToFirstOccurrence(t *testing.T) {
	desired := []LineItemInput{
		{PublisherID: "pub-1", ProductID: "prod-1", Quantity: 2, Price: 10, Total: 20},
		{PublisherID: "pub-1", ProductID: "prod-1", Quantity: 9, Price: 99, Total: 891},
	}

	ops := Reconcile("prop-1", nil, desired)
	if len(ops.Creates) != 1 {
		t.Fatalf("expected duplicates to collapse to one create, got %d", len(ops.Creates))
	}
	if ops.Creates[0].Quantity != 2 {
		t.Fatalf("expected the first occurrence to win, got quantity %d", ops.Creates[0].Quantity)
	}
}

func TestReconcile_EmptyDesiredDeletesEverything(t *testing.T) {
	existing := []models.ProposalProduct{
		existingItem("row-a", "pub-1", "prod-1", 2),
	}

	ops := Reconcile("prop-1", existing, []LineItemInput{})
	if !(len(ops.Creates) == 0 && len(ops.Updates) == 0) {
		t.Fatalf("expected a delete-only plan, got %+v", ops)
	}
	if len(ops.Deletes) != 1 || ops.Deletes[0] != "row-a" {
		t.Fatalf("expected row-a deleted, got %v", ops.Deletes)
	}
	if ops.Empty() {
		t.Fatalf("a delete plan is not empty")
	}
}
