package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/models"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Customers      int64            `json:"customers"`
	Products       int64            `json:"products"`
	Orders         int64            `json:"orders"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	Revenue        decimal.Decimal  `json:"revenue"`
}

// GetSummary collects the back-office dashboard counters. Revenue only
// counts delivered orders.
func GetSummary(ctx context.Context, db sqlx.ExtContext) (*Summary, error) {
	summary := &Summary{OrdersByStatus: map[string]int64{}}

	counts := `
		SELECT
			(SELECT COUNT(*) FROM customers) AS customers,
			(SELECT COUNT(*) FROM products) AS products,
			(SELECT COUNT(*) FROM orders) AS orders,
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1) AS revenue`

	var row struct {
		Customers int64           `db:"customers"`
		Products  int64           `db:"products"`
		Orders    int64           `db:"orders"`
		Revenue   decimal.Decimal `db:"revenue"`
	}
	if err := sqlx.GetContext(ctx, db, &row, counts, models.OrderStatusDelivered); err != nil {
		return nil, fmt.Errorf("get summary counts: %w", err)
	}
	summary.Customers = row.Customers
	summary.Products = row.Products
	summary.Orders = row.Orders
	summary.Revenue = row.Revenue

	var byStatus []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := sqlx.SelectContext(ctx, db, &byStatus, `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	for _, s := range byStatus {
		summary.OrdersByStatus[s.Status] = s.Count
	}

	return summary, nil
}
