package controllers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/publishers"
)

// PublisherController is the admin surface for publishers and their price
// lists. Create and update accept multipart forms so the logo and W9
// documents travel with the scalar fields.
type PublisherController struct {
	publishers *publishers.Service
}

func NewPublisherController(svc *publishers.Service) *PublisherController {
	return &PublisherController{publishers: svc}
}

func (pc *PublisherController) HandleCreate(c *fiber.Ctx) error {
	in := publishers.CreateInput{
		PublisherName: c.FormValue("publisherName"),
		Email:         c.FormValue("email"),
		PhoneNo:       c.FormValue("phoneNo"),
		WhatsappNo:    c.FormValue("whatsappNo"),
		Description:   c.FormValue("description"),
	}
	if raw := c.FormValue("products"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Products); err != nil {
			return respondError(c, apperror.New(apperror.CodeInvalidPayload, "products must be a JSON array"))
		}
	}
	if err := validate.Struct(in); err != nil {
		return respondError(c, apperror.Newf(apperror.CodeInvalidPayload, "Invalid publisher payload: %v", err))
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		logoPath, w9Paths, err := pc.storePublisherFiles(c, form)
		if err != nil {
			return respondError(c, err)
		}
		in.LogoPath = logoPath
		in.W9Paths = w9Paths
	}

	pub, err := pc.publishers.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pub)
}

func (pc *PublisherController) HandleList(c *fiber.Ctx) error {
	result, err := pc.publishers.List(c.Context(), parseListQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (pc *PublisherController) HandleGet(c *fiber.Ctx) error {
	pub, err := pc.publishers.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pub)
}

func (pc *PublisherController) HandleUpdate(c *fiber.Ctx) error {
	var in publishers.UpdateInput
	if v := c.FormValue("publisherName"); v != "" {
		in.PublisherName = &v
	}
	if v := c.FormValue("email"); v != "" {
		in.Email = &v
	}
	if v := c.FormValue("phoneNo"); v != "" {
		in.PhoneNo = &v
	}
	if v := c.FormValue("whatsappNo"); v != "" {
		in.WhatsappNo = &v
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if raw := c.FormValue("products"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Products); err != nil {
			return respondError(c, apperror.New(apperror.CodeInvalidPayload, "products must be a JSON array"))
		}
	}
	if raw := c.FormValue("removedW9Files"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.RemovedW9Files); err != nil {
			return respondError(c, apperror.New(apperror.CodeInvalidPayload, "removedW9Files must be a JSON array"))
		}
	}
	if err := validate.Struct(in); err != nil {
		return respondError(c, apperror.Newf(apperror.CodeInvalidPayload, "Invalid publisher payload: %v", err))
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		logoPath, w9Paths, err := pc.storePublisherFiles(c, form)
		if err != nil {
			return respondError(c, err)
		}
		if logoPath != "" {
			in.LogoPath = &logoPath
		}
		in.NewW9Paths = w9Paths
	}

	pub, err := pc.publishers.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pub)
}

func (pc *PublisherController) HandleDelete(c *fiber.Ctx) error {
	if err := pc.publishers.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// storePublisherFiles persists the "logo" upload (first file only) and every
// "w9Files" upload, returning their public path references.
func (pc *PublisherController) storePublisherFiles(c *fiber.Ctx, form *multipart.Form) (string, []string, error) {
	uploadDir := env.GetEnv("UPLOAD_DIR", "./public/uploads")

	var logoPath string
	if headers := form.File["logo"]; len(headers) > 0 {
		stored := uuid.NewString() + filepath.Ext(headers[0].Filename)
		if err := c.SaveFile(headers[0], filepath.Join(uploadDir, "publishers", stored)); err != nil {
			return "", nil, fmt.Errorf("storing logo: %w", err)
		}
		logoPath = "/publishers/" + stored
	}

	var w9Paths []string
	for _, header := range form.File["w9Files"] {
		stored := uuid.NewString() + filepath.Ext(header.Filename)
		if err := c.SaveFile(header, filepath.Join(uploadDir, "publishers", stored)); err != nil {
			return "", nil, fmt.Errorf("storing W9 %q: %w", header.Filename, err)
		}
		w9Paths = append(w9Paths, "/publishers/"+stored)
	}
	return logoPath, w9Paths, nil
}
