package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/database"
	"github.com/bookdesk/bookdesk/internal/models"
)

// AdminListOrders returns every order, newest first
func (h *Handler) AdminListOrders(c *fiber.Ctx) error {
	orders, err := h.db.ListAllOrders(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return Success(c, orders)
}

// AdminUpdateOrderStatus changes an order's status
func (h *Handler) AdminUpdateOrderStatus(c *fiber.Ctx) error {
	var req models.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if !models.ValidStatus(req.Status) {
		return Error(c, fiber.StatusBadRequest, "invalid order status")
	}

	order, err := h.db.UpdateOrderStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return Error(c, fiber.StatusNotFound, "order not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update order")
	}

	return Success(c, order)
}

// AdminListUsers returns all registered accounts
func (h *Handler) AdminListUsers(c *fiber.Ctx) error {
	users, err := h.db.ListUsers(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list users")
	}
	if users == nil {
		users = []*models.User{}
	}
	return Success(c, users)
}
