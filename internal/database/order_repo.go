package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bookdesk/bookdesk/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// CreateOrder inserts a new order with its line items as JSONB
func (db *DB) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, academy_name, contact, request, items, total_quantity, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`, order.UserID, order.AcademyName, order.Contact, order.Request, itemsJSON,
		order.TotalQuantity, order.TotalPrice, order.Status).Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByID retrieves a single order
func (db *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, academy_name, contact, request, items, total_quantity, total_price, status, created_at
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// ListOrdersByUser returns a user's orders, newest first
func (db *DB) ListOrdersByUser(ctx context.Context, userID int) ([]*models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, academy_name, contact, request, items, total_quantity, total_price, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListAllOrders returns every order, newest first. Admin view.
func (db *DB) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, academy_name, contact, request, items, total_quantity, total_price, status, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateOrderStatus changes an order's status
func (db *DB) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}

	return db.GetOrderByID(ctx, id)
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var itemsJSON []byte

	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.AcademyName,
		&order.Contact,
		&order.Request,
		&itemsJSON,
		&order.TotalQuantity,
		&order.TotalPrice,
		&order.Status,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}

	return order, nil
}
