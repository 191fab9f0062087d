package proposals

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/database"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewService(db, cache.NewMemory(), repository.NewRepositories(db)), db
}

type fixture struct {
	client     models.Client
	productA   models.Product
	productB   models.Product
	publisherX models.Publisher
	publisherY models.Publisher
}

// seedCatalog creates one client, two products and two publishers. Publisher X
// prices both products, publisher Y only product A.
func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		client:     models.Client{AccountName: "Acme Motors", Email: "ads@acme.test"},
		productA:   models.Product{ProductName: "Full Page Print"},
		productB:   models.Product{ProductName: "Homepage Banner"},
		publisherX: models.Publisher{PublisherName: "Daily Gazette", Email: "sales@gazette.test"},
		publisherY: models.Publisher{PublisherName: "Metro Radio", Email: "sales@metro.test"},
	}
	require.NoError(t, db.Create(&f.client).Error)
	require.NoError(t, db.Create(&f.productA).Error)
	require.NoError(t, db.Create(&f.productB).Error)
	require.NoError(t, db.Create(&f.publisherX).Error)
	require.NoError(t, db.Create(&f.publisherY).Error)

	pricing := []models.PublisherProduct{
		{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Price: 100},
		{PublisherID: f.publisherX.ID, ProductID: f.productB.ID, Price: 250},
		{PublisherID: f.publisherY.ID, ProductID: f.productA.ID, Price: 80},
	}
	require.NoError(t, db.Create(&pricing).Error)
	return f
}

func TestCreate_TotalAmountIsSumOfLineTotals(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Q3 Campaign",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 4, Price: 100, Total: 400},
			{PublisherID: f.publisherY.ID, ProductID: f.productA.ID, Quantity: 2, Price: 80, Total: 160},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusPending, created.ProposalStatus)
	require.Equal(t, models.PaymentStatusUnpaid, created.PaymentStatus)

	detail, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 560.0, detail.TotalAmount)
	require.Len(t, detail.Products, 2)
}

func TestCreate_RejectsUnknownClient(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:     uuid.NewString(),
		ProposalName: "Ghost",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 1, Price: 100, Total: 100},
		},
	})
	require.True(t, apperror.Is(err, apperror.CodeNotFound), "got %v", err)
}

func TestCreate_RejectsInactiveProduct(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	require.NoError(t, db.Model(&f.productA).Update("status", false).Error)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Stale Catalog",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 1, Price: 100, Total: 100},
		},
	})
	require.True(t, apperror.Is(err, apperror.CodeInvalidProducts), "got %v", err)
}

func TestCreate_RejectsUnpricedPublisherProductPair(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)

	// Publisher Y has no pricing row for product B.
	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Bad Pairing",
		Items: []LineItemInput{
			{PublisherID: f.publisherY.ID, ProductID: f.productB.ID, Quantity: 1, Price: 250, Total: 250},
		},
	})
	require.True(t, apperror.Is(err, apperror.CodeInvalidPublisherProduct), "got %v", err)
}

func TestCreate_RejectsDuplicatePairInPayload(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Twice The Same",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 1, Price: 100, Total: 100},
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 2, Price: 100, Total: 200},
		},
	})
	require.True(t, apperror.Is(err, apperror.CodeDuplicateEntry), "got %v", err)
}

func TestUpdate_ReconcilesLineItemsAsFullReplacement(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Reconciled",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 2, Price: 100, Total: 200},
			{PublisherID: f.publisherY.ID, ProductID: f.productA.ID, Quantity: 3, Price: 80, Total: 240},
		},
	})
	require.NoError(t, err)

	var before []models.ProposalProduct
	require.NoError(t, db.Where("proposal_id = ?", created.ID).Order("created_at").Find(&before).Error)
	require.Len(t, before, 2)
	var keptID string
	for _, row := range before {
		if row.PublisherID == f.publisherX.ID {
			keptID = row.ID
		}
	}

	// Keep X/A with a new quantity, drop Y/A, add X/B.
	_, err = svc.Update(ctx, created.ID, UpdateInput{
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 5, Price: 100, Total: 500},
			{PublisherID: f.publisherX.ID, ProductID: f.productB.ID, Quantity: 1, Price: 250, Total: 250},
		},
	})
	require.NoError(t, err)

	var after []models.ProposalProduct
	require.NoError(t, db.Where("proposal_id = ?", created.ID).Find(&after).Error)
	require.Len(t, after, 2)

	byKey := map[string]models.ProposalProduct{}
	for _, row := range after {
		byKey[row.Key()] = row
	}
	kept := byKey[f.publisherX.ID+"|"+f.productA.ID]
	require.Equal(t, keptID, kept.ID, "matched pair must keep its row identity")
	require.Equal(t, 5, kept.Quantity)
	require.Contains(t, byKey, f.publisherX.ID+"|"+f.productB.ID)
	require.NotContains(t, byKey, f.publisherY.ID+"|"+f.productA.ID)
}

func TestUpdate_PaidProposalIsLocked(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Locked",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 2, Price: 100, Total: 200},
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Proposal{}).Where("id = ?", created.ID).
		Update("payment_status", models.PaymentStatusPaid).Error)

	name := "Should Not Stick"
	_, err = svc.Update(ctx, created.ID, UpdateInput{
		ProposalName: &name,
		Items:        []LineItemInput{},
	})
	require.True(t, apperror.Is(err, apperror.CodeEditBlocked), "got %v", err)

	var reloaded models.Proposal
	require.NoError(t, db.First(&reloaded, "id = ?", created.ID).Error)
	require.Equal(t, "Locked", reloaded.ProposalName)

	var count int64
	require.NoError(t, db.Model(&models.ProposalProduct{}).Where("proposal_id = ?", created.ID).Count(&count).Error)
	require.EqualValues(t, 1, count, "line items must survive a blocked update")
}

func TestDelete_SoftDeleteHidesButKeepsRow(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Ephemeral",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 1, Price: 100, Total: 100},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	require.True(t, apperror.Is(err, apperror.CodeNotFound), "got %v", err)

	require.True(t, apperror.Is(svc.Delete(ctx, created.ID), apperror.CodeNotFound))

	var row models.Proposal
	require.NoError(t, db.First(&row, "id = ?", created.ID).Error)
	require.True(t, row.IsDeleted)
}

func TestList_ScopesToClientAndAggregatesTotals(t *testing.T) {
	svc, db := newTestService(t)
	f := seedCatalog(t, db)
	ctx := context.Background()

	other := models.Client{AccountName: "Other Co", Email: "other@co.test"}
	require.NoError(t, db.Create(&other).Error)

	mine, err := svc.Create(ctx, CreateInput{
		ClientID:     f.client.ID,
		ProposalName: "Mine",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productA.ID, Quantity: 3, Price: 100, Total: 300},
		},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		ClientID:     other.ID,
		ProposalName: "Theirs",
		Items: []LineItemInput{
			{PublisherID: f.publisherX.ID, ProductID: f.productB.ID, Quantity: 1, Price: 250, Total: 250},
		},
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Pagination.Total)

	scoped, err := svc.List(ctx, ListQuery{ClientID: f.client.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, scoped.Pagination.Total)
	require.Equal(t, mine.ID, scoped.Proposals[0].ID)
	require.Equal(t, 300.0, scoped.Proposals[0].TotalAmount)
	require.Equal(t, "Acme Motors", scoped.Proposals[0].Client.AccountName)
}
