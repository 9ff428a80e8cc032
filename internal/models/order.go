package models

import (
	"time"
)

type OrderStatus string

const (
	StatusReceived  OrderStatus = "주문접수"
	StatusCompleted OrderStatus = "주문완료"
	StatusCancelled OrderStatus = "취소됨"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusReceived, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            string      `json:"id"`
	UserID        int         `json:"userId"`
	AcademyName   string      `json:"academyName"`
	Contact       string      `json:"contact"`
	Request       string      `json:"request,omitempty"`
	Items         []CartItem  `json:"items"`
	TotalQuantity int         `json:"totalQuantity"`
	TotalPrice    int         `json:"totalPrice"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"date"`
}

// CreateOrderRequest is the request body for order submission. Totals
// are recomputed server-side from the items.
type CreateOrderRequest struct {
	Request string     `json:"request"`
	Items   []CartItem `json:"items"`
}

// UpdateOrderStatusRequest is the admin request body for status changes
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}
