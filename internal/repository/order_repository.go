package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"luxe/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `
	id, order_number, customer_name, customer_phone, customer_email,
	shipping_address, subtotal, shipping_charges, cod_charges, total_amount,
	payment_method, payment_status, razorpay_order_id, razorpay_payment_id,
	razorpay_signature, status, tracking_number, tracking_url,
	shipped_at, delivered_at, created_at, updated_at
`

// decrementStockSQL clamps tracked stock at zero; untracked products
// (stock_quantity IS NULL) are left alone.
const decrementStockSQL = `
	UPDATE products
	SET stock_quantity = GREATEST(0, stock_quantity - $2), updated_at = NOW()
	WHERE id = $1 AND stock_quantity IS NOT NULL
`

// Create inserts a new order and its line items in a single transaction.
func (r *orderRepository) Create(ctx context.Context, order *model.Order, decrementStock bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, customer_name, customer_phone, customer_email,
			shipping_address, subtotal, shipping_charges, cod_charges, total_amount,
			payment_method, payment_status, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.CustomerName, order.CustomerPhone, order.CustomerEmail,
		addressJSON, order.Subtotal, order.ShippingCharges, order.CODCharges, order.TotalAmount,
		order.PaymentMethod, order.PaymentStatus, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, title, unit_price, sale_price, quantity, size, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for i, item := range order.Items {
		batch.Queue(itemQuery, order.ID, i, item.ProductID, item.Title,
			item.UnitPrice, item.SalePrice, item.Quantity, item.Size, item.Image)
	}
	if decrementStock {
		for _, item := range order.Items {
			batch.Queue(decrementStockSQL, item.ProductID, item.Quantity)
		}
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().
				Err(err).
				Str("order_number", order.OrderNumber).
				Msg("failed to insert order items")
			return fmt.Errorf("failed to insert order items: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to commit order")
		return fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Debug().
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Bool("stock_decremented", decrementStock).
		Msg("order created")

	return nil
}

// GetByID retrieves an order with its line items by internal id.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByOrderNumber retrieves an order with its line items by order number.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, "order_number = $1", orderNumber)
}

// GetByGatewayOrderID retrieves the order holding the given remote gateway
// order id.
func (r *orderRepository) GetByGatewayOrderID(ctx context.Context, razorpayOrderID string) (*model.Order, error) {
	return r.getOne(ctx, "razorpay_order_id = $1", razorpayOrderID)
}

// GetByPaymentID retrieves the order holding the given gateway payment id.
func (r *orderRepository) GetByPaymentID(ctx context.Context, razorpayPaymentID string) (*model.Order, error) {
	return r.getOne(ctx, "razorpay_payment_id = $1", razorpayPaymentID)
}

func (r *orderRepository) getOne(ctx context.Context, where string, arg any) (*model.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE %s", orderColumns, where)

	row := r.pool.QueryRow(ctx, query, arg)
	order, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return order, nil
}

// FindByPhone retrieves all orders placed with the given phone number.
func (r *orderRepository) FindByPhone(ctx context.Context, phone string) ([]model.Order, error) {
	return r.findMany(ctx, "WHERE customer_phone = $1 ORDER BY created_at DESC", phone)
}

// FindByIDs retrieves orders matching the given internal ids.
func (r *orderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Order, error) {
	if len(ids) == 0 {
		return []model.Order{}, nil
	}
	return r.findMany(ctx, "WHERE id = ANY($1) ORDER BY created_at DESC", ids)
}

// List retrieves orders for the admin dashboard, newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	return r.findMany(ctx, "ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
}

// Count returns the total number of orders.
func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *orderRepository) findMany(ctx context.Context, clause string, args ...any) ([]model.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders %s", orderColumns, clause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var ids []uuid.UUID
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// loadItems fetches line items for the given order ids in one query,
// preserving their creation order.
func (r *orderRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderLineItem, error) {
	result := make(map[uuid.UUID][]model.OrderLineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT order_id, product_id, title, unit_price, sale_price, quantity, size, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item model.OrderLineItem
		err := rows.Scan(&orderID, &item.ProductID, &item.Title, &item.UnitPrice,
			&item.SalePrice, &item.Quantity, &item.Size, &item.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[orderID] = append(result[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return result, nil
}

// SetGatewayOrder stores the remote gateway order id on a pending order.
func (r *orderRepository) SetGatewayOrder(ctx context.Context, id uuid.UUID, razorpayOrderID string) error {
	query := `UPDATE orders SET razorpay_order_id = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, razorpayOrderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("razorpay_order_id", razorpayOrderID).
			Msg("failed to set gateway order id")
		return fmt.Errorf("failed to set gateway order id: %w", err)
	}
	return nil
}

// MarkPaid atomically confirms payment and decrements stock exactly once.
//
// The conditional WHERE guards against the client callback and the gateway
// webhook racing each other: only the first caller affects a row, and only
// that caller's transaction touches stock.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET payment_status = 'paid',
		    status = 'confirmed',
		    razorpay_payment_id = NULLIF($2, ''),
		    razorpay_signature = COALESCE(NULLIF($3, ''), razorpay_signature),
		    updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'paid'
	`

	tag, err := tx.Exec(ctx, query, id, paymentID, signature)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already paid by the other confirmation path.
		return false, nil
	}

	rows, err := tx.Query(ctx, "SELECT product_id, quantity FROM order_items WHERE order_id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to load order items: %w", err)
	}

	type lineQty struct {
		productID string
		quantity  int
	}
	var lines []lineQty
	for rows.Next() {
		var l lineQty
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating order items: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(decrementStockSQL, l.productID, l.quantity)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return false, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return false, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit payment confirmation")
		return false, fmt.Errorf("failed to commit payment confirmation: %w", err)
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Str("payment_id", paymentID).
		Int("line_count", len(lines)).
		Msg("order marked paid, stock decremented")

	return true, nil
}

// MarkPaymentFailed moves a still-pending payment to failed and cancels the order.
func (r *orderRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'failed', status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND payment_status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark payment failed")
		return false, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRefunded moves a paid order's payment status to refunded.
func (r *orderRepository) MarkRefunded(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = 'refunded', updated_at = NOW()
		WHERE id = $1 AND payment_status = 'paid'
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order refunded")
		return false, fmt.Errorf("failed to mark order refunded: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateFulfillment sets the fulfillment status, stamping shipped_at and
// delivered_at the first time those states are entered.
func (r *orderRepository) UpdateFulfillment(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingNumber, trackingURL *string) error {
	query := `
		UPDATE orders
		SET status = $2,
		    tracking_number = COALESCE($3, tracking_number),
		    tracking_url = COALESCE($4, tracking_url),
		    shipped_at = CASE WHEN $2 = 'shipped' AND shipped_at IS NULL THEN NOW() ELSE shipped_at END,
		    delivered_at = CASE WHEN $2 = 'delivered' AND delivered_at IS NULL THEN NOW() ELSE delivered_at END,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, string(status), trackingNumber, trackingURL)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update fulfillment")
		return fmt.Errorf("failed to update fulfillment: %w", err)
	}
	return nil
}

// Delete removes an order row and its items. Compensation only; orders are
// never hard-deleted in normal operation.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order delete: %w", err)
	}

	r.logger.Warn().Str("order_id", id.String()).Msg("order deleted (gateway compensation)")
	return nil
}

// scanOrder scans a full order row. The caller attaches line items.
func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var addressJSON []byte

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&addressJSON, &o.Subtotal, &o.ShippingCharges, &o.CODCharges, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.RazorpayOrderID, &o.RazorpayPaymentID,
		&o.RazorpaySignature, &o.Status, &o.TrackingNumber, &o.TrackingURL,
		&o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}

	return &o, nil
}
