package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/listing"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/payments"
)

// PaymentController serves the gateway webhook and the admin payment list.
type PaymentController struct {
	payments *payments.Service
	repo     repository.PaymentRepository
}

func NewPaymentController(svc *payments.Service, repo repository.PaymentRepository) *PaymentController {
	return &PaymentController{payments: svc, repo: repo}
}

// HandleWebhook receives gateway events. The signature is verified against the
// raw body before anything is parsed. After a valid signature the endpoint
// always answers 200: settlement failures are logged, never bubbled, so the
// gateway does not enter a redelivery storm.
func (pc *PaymentController) HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	if !payments.VerifyWebhookSignature(payload, signature, secret, payments.DefaultSignatureTolerance) {
		log.Printf("webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).SendString("invalid signature")
	}

	ev, settled, err := payments.ParseWebhookEvent(payload)
	if err != nil {
		log.Printf("webhook payload could not be parsed: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}
	if !settled {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := pc.payments.HandleSettlement(c.Context(), *ev); err != nil {
		log.Printf("settlement for payment %s failed: %v", ev.ExternalPaymentID, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// HandleList returns settled payments, newest first.
func (pc *PaymentController) HandleList(c *fiber.Ctx) error {
	q := parseListQuery(c).Normalize()

	total, err := pc.repo.Count()
	if err != nil {
		return respondError(c, err)
	}
	rows, err := pc.repo.List(q.Offset(), q.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"payments":   rows,
		"pagination": listing.NewPagination(total, q),
	})
}
