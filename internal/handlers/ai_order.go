package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/middleware"
	"github.com/bookdesk/bookdesk/internal/models"
	"github.com/bookdesk/bookdesk/internal/services"
)

type startAIOrderRequest struct {
	Text string `json:"text"`
}

type editItemRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// aiOrderState is the review session view returned by every session
// endpoint: the items still under review plus the cart built so far.
type aiOrderState struct {
	SessionID string                 `json:"sessionId"`
	Items     []models.ProcessedItem `json:"items"`
	Cart      []models.CartItem      `json:"cart"`
}

func sessionState(session *services.ReviewSession) aiOrderState {
	return aiOrderState{
		SessionID: session.ID,
		Items:     session.Items(),
		Cart:      session.CartItems(),
	}
}

// StartAIOrder runs the extraction pipeline on free order text and
// opens a review session over the classified results. Extraction
// failures abort the whole call; per-item search failures do not, they
// just come back as unresolved items.
func (h *Handler) StartAIOrder(c *fiber.Ctx) error {
	var req startAIOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	extracted, err := h.extractor.Extract(c.Context(), req.Text)
	if err != nil {
		return startError(c, err)
	}

	processed := h.resolver.Resolve(c.Context(), extracted)
	session := h.sessions.Create(middleware.GetUserID(c), processed, h.catalog)

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    sessionState(session),
	})
}

// GetAIOrder returns the current state of a review session
func (h *Handler) GetAIOrder(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	return Success(c, sessionState(session))
}

// EditAIOrderItem updates the title or quantity of an unresolved item
func (h *Handler) EditAIOrderItem(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	index, err := itemIndex(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item index")
	}

	var req editItemRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := session.EditFailed(index, req.Field, req.Value); err != nil {
		return reviewError(c, err)
	}
	return Success(c, sessionState(session))
}

// RetryAIOrderItem re-searches the catalog for an unresolved item
func (h *Handler) RetryAIOrderItem(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	index, err := itemIndex(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item index")
	}

	if err := session.Retry(c.Context(), index); err != nil {
		if errors.Is(err, services.ErrStillNoMatch) {
			// Non-fatal: the item stays in review for another edit
			return c.JSON(APIResponse{
				Success: false,
				Error:   "still no catalog match",
				Data:    sessionState(session),
			})
		}
		return reviewError(c, err)
	}
	return Success(c, sessionState(session))
}

// MergeAIOrderItem moves one resolved item into the session cart
func (h *Handler) MergeAIOrderItem(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	index, err := itemIndex(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item index")
	}

	if err := session.MergeOne(index); err != nil {
		return reviewError(c, err)
	}
	return Success(c, sessionState(session))
}

// MergeAllAIOrderItems moves every resolved item into the session cart
func (h *Handler) MergeAllAIOrderItems(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}

	merged := session.MergeAllResolved()
	return Success(c, fiber.Map{
		"merged":  merged,
		"session": sessionState(session),
	})
}

// RemoveAIOrderItem deletes an item from the review sequence
func (h *Handler) RemoveAIOrderItem(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	index, err := itemIndex(c)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item index")
	}

	if err := session.Remove(index); err != nil {
		return reviewError(c, err)
	}
	return Success(c, sessionState(session))
}

// DiscardAIOrder drops the whole review session
func (h *Handler) DiscardAIOrder(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusNotFound, "session not found")
	}
	h.sessions.Delete(session.ID)
	return Success(c, fiber.Map{"deleted": true})
}

func (h *Handler) session(c *fiber.Ctx) (*services.ReviewSession, error) {
	return h.sessions.Get(c.Params("id"), middleware.GetUserID(c))
}

func itemIndex(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("index"))
}

// startError maps extraction failures onto the session endpoints'
// envelope. The bare {error, details} shape stays reserved for
// /api/parse-order.
func startError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyText):
		return Error(c, fiber.StatusBadRequest, "order text is required")
	case errors.Is(err, services.ErrMissingAPIKey):
		return Error(c, fiber.StatusInternalServerError, "server configuration error")
	case errors.Is(err, services.ErrMalformedResponse),
		errors.Is(err, services.ErrModelsUnavailable):
		return Error(c, fiber.StatusBadGateway, "order analysis failed")
	default:
		return Error(c, fiber.StatusInternalServerError, "internal error")
	}
}

func reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrIndexOutOfRange):
		return Error(c, fiber.StatusNotFound, "item not found")
	case errors.Is(err, services.ErrItemResolved),
		errors.Is(err, services.ErrItemUnresolved),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrEmptyQuery):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMissingCredentials):
		return Error(c, fiber.StatusInternalServerError, "server configuration error")
	case errors.Is(err, services.ErrUpstream):
		return Error(c, fiber.StatusBadGateway, "book search failed")
	default:
		return Error(c, fiber.StatusInternalServerError, "internal error")
	}
}
