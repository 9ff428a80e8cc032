package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/services"
)

// SearchBooks proxies a catalog search. The response body is the bare
// {items: [...]} shape the search UI and the review pipeline both
// consume; an empty result is a 200 with an empty array.
func (h *Handler) SearchBooks(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter is required",
		})
	}

	limit := c.QueryInt("display", 10)

	books, err := h.catalog.Search(c.Context(), query, limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		case errors.Is(err, services.ErrUpstream):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to fetch from book search API",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}
	}

	return c.JSON(fiber.Map{"items": books})
}
