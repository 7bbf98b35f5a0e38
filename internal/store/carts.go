package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/models"
)

// GetCart returns the user's cart, or an empty one when none was saved.
func GetCart(ctx context.Context, db sqlx.ExtContext, userID string) (*models.Cart, error) {
	cart := &models.Cart{}

	err := sqlx.GetContext(ctx, db, cart, `SELECT user_id, items, updated_at FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Cart{UserID: userID, Items: models.LineItems{}, UpdatedAt: time.Now()}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// SaveCart replaces the user's cart wholesale. Concurrent saves for one user
// are last-write-wins.
func SaveCart(ctx context.Context, db sqlx.ExtContext, userID string, items models.LineItems) (*models.Cart, error) {
	cart := &models.Cart{}

	query := `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = NOW()
		RETURNING user_id, items, updated_at`

	if err := sqlx.GetContext(ctx, db, cart, query, userID, items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

func ClearCart(ctx context.Context, db sqlx.ExtContext, userID string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
