package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/services"
)

type parseOrderRequest struct {
	Text string `json:"text"`
}

// ParseOrder extracts structured line items from free order text.
// Returns the bare {items: [...]} shape; failures carry {error,
// details} so the client can show the underlying cause.
func (h *Handler) ParseOrder(c *fiber.Ctx) error {
	var req parseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	items, err := h.extractor.Extract(c.Context(), req.Text)
	if err != nil {
		return extractionError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

// extractionError maps extractor failures onto the parse endpoint's
// wire contract.
func extractionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyText):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	case errors.Is(err, services.ErrMissingAPIKey):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server configuration error",
		})
	case errors.Is(err, services.ErrMalformedResponse):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to parse AI response",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrModelsUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "AI service error",
			"details": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "AI service error",
			"details": err.Error(),
		})
	}
}
