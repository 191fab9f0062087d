package controllers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/advertisements"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/apperror"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/middleware"
)

// reservedAdFields are multipart values that are not custom creative fields.
var reservedAdFields = map[string]struct{}{
	"proposalProductId": {},
	"adDate":            {},
	"adTime":            {},
}

// AdvertisementController is the client-facing creative submission surface.
type AdvertisementController struct {
	ads *advertisements.Service
}

func NewAdvertisementController(svc *advertisements.Service) *AdvertisementController {
	return &AdvertisementController{ads: svc}
}

// HandleSubmit accepts a multipart creative submission: scalar custom fields
// plus uploaded assets grouped by form field name. Files are stored first;
// the service then validates the credit chain and spends one credit.
func (ac *AdvertisementController) HandleSubmit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, apperror.New(apperror.CodeInvalidPayload, "Multipart form expected"))
	}

	in := advertisements.SubmitInput{
		ProposalProductID: c.FormValue("proposalProductId"),
		CustomFields:      map[string]string{},
	}
	if in.ProposalProductID == "" {
		return respondError(c, apperror.New(apperror.CodeInvalidPayload, "proposalProductId is required"))
	}

	adDate, err := time.Parse("2006-01-02", c.FormValue("adDate"))
	if err != nil {
		return respondError(c, apperror.New(apperror.CodeInvalidPayload, "adDate must be YYYY-MM-DD"))
	}
	in.AdDate = adDate

	adTime, err := parseAdTime(adDate, c.FormValue("adTime"))
	if err != nil {
		return respondError(c, apperror.New(apperror.CodeInvalidPayload, "adTime must be HH:MM"))
	}
	in.AdTime = adTime

	for field, values := range form.Value {
		if _, reserved := reservedAdFields[field]; reserved {
			continue
		}
		if len(values) > 0 {
			in.CustomFields[field] = values[0]
		}
	}

	uploadDir := env.GetEnv("UPLOAD_DIR", "./public/uploads")
	for field, headers := range form.File {
		for _, header := range headers {
			stored := uuid.NewString() + filepath.Ext(header.Filename)
			if err := c.SaveFile(header, filepath.Join(uploadDir, "advertisements", stored)); err != nil {
				return respondError(c, fmt.Errorf("storing upload %q: %w", header.Filename, err))
			}
			in.Files = append(in.Files, advertisements.UploadedFile{
				FieldName: field,
				Path:      "/advertisements/" + stored,
			})
		}
	}

	ad, err := ac.ads.Submit(c.Context(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

// HandleList returns the requesting client's advertisements.
func (ac *AdvertisementController) HandleList(c *fiber.Ctx) error {
	result, err := ac.ads.List(c.Context(), middleware.UserID(c), parseListQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGet returns one advertisement owned by the requesting client.
func (ac *AdvertisementController) HandleGet(c *fiber.Ctx) error {
	ad, err := ac.ads.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ad)
}

func parseAdTime(day time.Time, raw string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", raw)
}
