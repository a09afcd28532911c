package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/matiahasmasan/GreenUp/internal/database"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// Store is the durable keeper of orders and their items, backed by
// PostgreSQL. It is the only component that assigns ids or persists status.
type Store interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id int) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	SetStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error)
	Ping(ctx context.Context) error
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store backed by the given database.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateOrder persists a new order and all of its items in one transaction.
// Subtotals and the total are recomputed here from price and quantity; the
// client-sent total is never trusted. Either every row is committed or none.
func (s *PostgresStore) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerName:  req.CustomerName,
		TableNumber:   req.TableNumber,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		TotalAmount:   req.CalculateTotalAmount(),
	}
	order.SetStatus(models.StatusPending)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.CustomerName, order.TableNumber, string(order.PaymentMethod),
		order.TotalAmount, string(models.StatusPending),
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, input := range req.Items {
		item := models.OrderItem{
			OrderID:  order.ID,
			Name:     input.Name,
			Price:    input.Price,
			Quantity: input.Quantity,
			Subtotal: input.Subtotal(),
		}
		err := tx.QueryRow(ctx, database.InsertOrderItemSQL,
			item.OrderID, item.Name, item.Price, item.Quantity, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item %q: %w", item.Name, err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return order, nil
}

// GetOrder fetches a single order with its items.
func (s *PostgresStore) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	row := s.db.QueryRow(ctx, database.GetOrderSQL, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrders returns every order, most recent first, with items nested.
// The creation-descending ordering is relied on by the staff poller.
func (s *PostgresStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, database.ListOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var ids []int32
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, int32(order.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.Query(ctx, database.ListItemsForOrdersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	byOrder := make(map[int][]models.OrderItem, len(orders))
	for itemRows.Next() {
		var item models.OrderItem
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Price, &item.Quantity, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order item rows: %w", err)
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}

	return orders, nil
}

// SetStatus applies a status value to one order. The update is
// unconditional apart from the id match: concurrent writers resolve
// last-write-wins, with no version token checked.
func (s *PostgresStore) SetStatus(ctx context.Context, id int, status models.OrderStatus) (*models.Order, error) {
	if _, err := models.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	tag, err := s.db.Pool.Exec(ctx, database.UpdateOrderStatusSQL, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return s.GetOrder(ctx, id)
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// loadItems fetches the items of one order in insertion order.
func (s *PostgresStore) loadItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, database.ListOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Price, &item.Quantity, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order item rows: %w", err)
	}

	return items, nil
}

// scanOrder scans one order row. The status column stays nullable on the
// wire; normalization to pending is the clients' responsibility.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	var status *string
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.TableNumber,
		&order.PaymentMethod,
		&order.TotalAmount,
		&status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if status != nil {
		order.SetStatus(models.OrderStatus(*status))
	}
	return &order, nil
}
