package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/database"
	"github.com/bookdesk/bookdesk/internal/middleware"
	"github.com/bookdesk/bookdesk/internal/models"
)

// CreateOrder submits the caller's cart as a new order. Totals are
// recomputed server-side; client-sent totals are ignored.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return Error(c, fiber.StatusBadRequest, "order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Title == "" {
			return Error(c, fiber.StatusBadRequest, "order item is missing a title")
		}
		if item.Quantity < 1 {
			return Error(c, fiber.StatusBadRequest, "order item quantity must be at least 1")
		}
	}

	user, err := h.db.GetUserByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to load user")
	}

	totalQuantity := 0
	totalPrice := 0
	for _, item := range req.Items {
		totalQuantity += item.Quantity
		if price, err := strconv.Atoi(item.Discount); err == nil {
			totalPrice += price * item.Quantity
		}
	}

	order := &models.Order{
		UserID:        user.ID,
		AcademyName:   user.AcademyName,
		Contact:       user.Contact,
		Request:       req.Request,
		Items:         req.Items,
		TotalQuantity: totalQuantity,
		TotalPrice:    totalPrice,
		Status:        models.StatusReceived,
	}

	order, err = h.db.CreateOrder(c.Context(), order)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to save order")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data:    order,
	})
}

// ListOrders returns the caller's orders, newest first
func (h *Handler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.db.ListOrdersByUser(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return Success(c, orders)
}

// GetOrder returns one order. Owners see their own; admins see any.
func (h *Handler) GetOrder(c *fiber.Ctx) error {
	order, err := h.db.GetOrderByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return Error(c, fiber.StatusNotFound, "order not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get order")
	}

	if order.UserID != middleware.GetUserID(c) && middleware.GetUserRole(c) != models.RoleAdmin {
		return Error(c, fiber.StatusForbidden, "not your order")
	}

	return Success(c, order)
}
