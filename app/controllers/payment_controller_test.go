package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/cache"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/database"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/payments"
)

const testWebhookSecret = "whsec_controller_test"

func newWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := payments.NewService(db, cache.NewMemory(), nil)
	ctrl := NewPaymentController(svc, repository.NewPaymentRepository(db))

	app := fiber.New()
	app.Post("/api/payments/webhook", ctrl.HandleWebhook)
	return app, db
}

func signBody(body []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func settlementBody(proposalID, paymentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": %q,
				"amount": 20000,
				"currency": "usd",
				"status": "succeeded",
				"payment_method_types": ["card"],
				"metadata": { "proposalId": %q, "adminId": "admin-1" }
			}
		}
	}`, paymentID, proposalID))
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	app, _ := newWebhookApp(t)

	body := settlementBody(uuid.NewString(), "pi_1")
	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleWebhook_SettlesAndAcknowledges(t *testing.T) {
	app, db := newWebhookApp(t)

	client := models.Client{AccountName: "Acme", Email: "acme@test.test"}
	require.NoError(t, db.Create(&client).Error)
	proposal := models.Proposal{ClientID: client.ID, ProposalName: "Campaign"}
	require.NoError(t, db.Create(&proposal).Error)

	body := settlementBody(proposal.ID, "pi_ctrl_1")
	send := func() int {
		req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
		req.Header.Set("Stripe-Signature", signBody(body))
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send())

	var reloaded models.Proposal
	require.NoError(t, db.First(&reloaded, "id = ?", proposal.ID).Error)
	require.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)

	// Redelivery is acknowledged without creating a second payment row.
	require.Equal(t, fiber.StatusOK, send())
	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestHandleWebhook_UnknownProposalStillAcknowledged(t *testing.T) {
	app, db := newWebhookApp(t)

	body := settlementBody(uuid.NewString(), "pi_orphan")
	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signBody(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestHandleWebhook_IgnoredEventTypes(t *testing.T) {
	app, _ := newWebhookApp(t)

	body := []byte(`{"type":"payment_intent.created","data":{"object":{"id":"pi_x"}}}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signBody(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
