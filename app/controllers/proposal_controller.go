package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/repository"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/middleware"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/payments"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/proposals"
)

// ProposalController exposes the admin proposal CRUD surface plus payment
// intent creation, and the client-scoped proposal list.
type ProposalController struct {
	proposals *proposals.Service
	payments  *payments.Service
	clients   repository.ClientRepository
}

func NewProposalController(p *proposals.Service, pay *payments.Service, clients repository.ClientRepository) *ProposalController {
	return &ProposalController{proposals: p, payments: pay, clients: clients}
}

// HandleCreate creates a proposal with its line items.
func (pc *ProposalController) HandleCreate(c *fiber.Ctx) error {
	var in proposals.CreateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	created, err := pc.proposals.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleList returns the filtered, paginated proposal list.
func (pc *ProposalController) HandleList(c *fiber.Ctx) error {
	result, err := pc.proposals.List(c.Context(), proposals.ListQuery{Query: parseListQuery(c)})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGet returns one proposal with nested line items.
func (pc *ProposalController) HandleGet(c *fiber.Ctx) error {
	detail, err := pc.proposals.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// HandleUpdate applies partial fields and an optional line-item replacement.
func (pc *ProposalController) HandleUpdate(c *fiber.Ctx) error {
	var in proposals.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}

	updated, err := pc.proposals.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// HandleDelete soft-deletes a proposal.
func (pc *ProposalController) HandleDelete(c *fiber.Ctx) error {
	if err := pc.proposals.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type createIntentRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid4"`
}

// HandleCreatePaymentIntent requests a gateway intent for a proposal and
// returns the client secret for the gateway's confirmation step.
func (pc *ProposalController) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req createIntentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	clientSecret, err := pc.payments.CreateIntent(c.Context(), req.ProposalID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"clientSecret": clientSecret})
}

// HandleClientList returns the requesting client's own proposals.
func (pc *ProposalController) HandleClientList(c *fiber.Ctx) error {
	client, err := pc.clients.GetByUserID(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, apperror.New(apperror.CodeInvalidClient, "Client not found for user"))
		}
		return respondError(c, err)
	}

	result, err := pc.proposals.List(c.Context(), proposals.ListQuery{
		Query:    parseListQuery(c),
		ClientID: client.ID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
