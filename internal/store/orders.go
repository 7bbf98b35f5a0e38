package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_number, user_id, customer_email, items, status, total_amount, currency, payment, shipping, created_at, updated_at, version`

type CreateOrderRequest struct {
	UserID        string
	CustomerEmail string
	Items         models.LineItems
	FromCart      bool
	Currency      string
	Shipping      models.Shipping
}

type OrderFilter struct {
	Status string
	UserID string
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), strings.ToUpper(uuid.NewString()[:8]))
}

// CreateOrder prices the requested items from the catalog and inserts a
// pending order. With FromCart the items come from the user's saved cart,
// which is cleared in the same transaction.
func CreateOrder(ctx context.Context, db *sqlx.DB, req CreateOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sqlx.Tx) error {
		items := req.Items
		if req.FromCart {
			cart, err := GetCart(ctx, tx, req.UserID)
			if err != nil {
				return err
			}
			if len(cart.Items) == 0 {
				return database.ErrCartEmpty
			}
			items = cart.Items
		}
		if len(items) == 0 {
			return database.ErrNoItems
		}

		priced, err := priceItems(ctx, tx, items)
		if err != nil {
			return err
		}

		order = &models.Order{}
		query := `
			INSERT INTO orders (order_number, user_id, customer_email, items, status, total_amount, currency,
			                    payment, shipping, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW(), 1)
			RETURNING ` + orderColumns

		err = sqlx.GetContext(ctx, tx, order, query,
			generateOrderNumber(),
			req.UserID,
			strings.ToLower(req.CustomerEmail),
			priced,
			models.OrderStatusPending,
			priced.Total(),
			strings.ToLower(req.Currency),
			models.Payment{Status: models.PaymentStatusRequiresPayment},
			req.Shipping,
		)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if req.FromCart {
			return ClearCart(ctx, tx, req.UserID)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func priceItems(ctx context.Context, tx *sqlx.Tx, items models.LineItems) (models.LineItems, error) {
	priced := make(models.LineItems, 0, len(items))

	for _, item := range items {
		var product struct {
			Name     string          `db:"name"`
			Price    decimal.Decimal `db:"price"`
			IsActive bool            `db:"is_active"`
		}

		err := sqlx.GetContext(ctx, tx, &product,
			`SELECT name, price, is_active FROM products WHERE id = $1`, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("product %d: %w", item.ProductID, database.ErrInvalidReference)
			}
			return nil, fmt.Errorf("price product %d: %w", item.ProductID, err)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, database.ErrProductInactive)
		}

		item.Name = product.Name
		item.Price = product.Price
		priced = append(priced, item)
	}

	return priced, nil
}

func GetOrder(ctx context.Context, db sqlx.ExtContext, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := sqlx.GetContext(ctx, db, order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return order, nil
}

func ListOrdersCursor(ctx context.Context, db sqlx.ExtContext, userID string, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	orders := []models.Order{}
	if err := sqlx.SelectContext(ctx, db, &orders, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListOrders is the back-office listing across all users.
func ListOrders(ctx context.Context, db sqlx.ExtContext, filter OrderFilter, page, pageSize int) (*OffsetPage, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := sqlx.GetContext(ctx, db, &total, `SELECT COUNT(*) FROM orders `+where, args...); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, orderColumns, where, n+1, n+2)

	orders := []models.Order{}
	args = append(args, pageSize, (page-1)*pageSize)
	if err := sqlx.SelectContext(ctx, db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

// ReplaceOrder overwrites the mutable fields of an order with the given
// document. The total is stored as sent.
func ReplaceOrder(ctx context.Context, db sqlx.ExtContext, id int64, order models.Order) (*models.Order, error) {
	if !models.ValidOrderStatus(order.Status) {
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidStatus, order.Status)
	}

	updated := &models.Order{}
	query := `
		UPDATE orders
		SET customer_email = $1, items = $2, status = $3, total_amount = $4, currency = $5,
		    payment = $6, shipping = $7, updated_at = NOW(), version = version + 1
		WHERE id = $8
		RETURNING ` + orderColumns

	err := sqlx.GetContext(ctx, db, updated, query,
		strings.ToLower(order.CustomerEmail),
		order.Items,
		order.Status,
		order.TotalAmount,
		strings.ToLower(order.Currency),
		order.Payment,
		order.Shipping,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("replace order: %w", err)
	}

	return updated, nil
}

func UpdateOrderStatus(ctx context.Context, db sqlx.ExtContext, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", database.ErrInvalidStatus, status)
	}

	order := &models.Order{}
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2
		RETURNING ` + orderColumns

	if err := sqlx.GetContext(ctx, db, order, query, status, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return order, nil
}

// SetOrderPayment records the payment sub-document. When the payment has
// succeeded a pending order moves to confirmed.
func SetOrderPayment(ctx context.Context, db sqlx.ExtContext, id int64, payment models.Payment) (*models.Order, error) {
	order := &models.Order{}
	query := `
		UPDATE orders
		SET payment = $1,
		    status = CASE WHEN $2 AND status = $3 THEN $4 ELSE status END,
		    updated_at = NOW(), version = version + 1
		WHERE id = $5
		RETURNING ` + orderColumns

	succeeded := payment.Status == models.PaymentStatusSucceeded
	err := sqlx.GetContext(ctx, db, order, query,
		payment, succeeded, models.OrderStatusPending, models.OrderStatusConfirmed, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("set order payment: %w", err)
	}

	return order, nil
}

func DeleteOrder(ctx context.Context, db sqlx.ExtContext, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	return expectAffected(result, database.ErrOrderNotFound)
}
