package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_name, table_number, payment_method, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, name, price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	GetOrderSQL = `
		SELECT id, customer_name, table_number, payment_method, total_amount, status, created_at, updated_at
		FROM orders WHERE id = $1`

	ListOrdersSQL = `
		SELECT id, customer_name, table_number, payment_method, total_amount, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC, id DESC`

	ListOrderItemsSQL = `
		SELECT id, order_id, name, price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	ListItemsForOrdersSQL = `
		SELECT id, order_id, name, price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id ASC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2`
)
