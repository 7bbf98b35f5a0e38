package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
)

const addressColumns = `id, user_id, full_name, line1, line2, city, state, postal_code, country, phone, is_default, created_at, updated_at`

type AddressInput struct {
	FullName   string `json:"full_name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

// CreateAddress stores a new address for userID. A default address clears
// the flag on the user's other addresses in the same transaction.
func CreateAddress(ctx context.Context, db *sqlx.DB, userID string, in AddressInput) (*models.Address, error) {
	address := &models.Address{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		if in.IsDefault {
			if err := clearDefaultAddress(ctx, tx, userID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO addresses (user_id, full_name, line1, line2, city, state, postal_code, country, phone, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING ` + addressColumns

		err := sqlx.GetContext(ctx, tx, address, query,
			userID, in.FullName, in.Line1, in.Line2, in.City, in.State, in.PostalCode, in.Country, in.Phone, in.IsDefault)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return database.ErrUserNotFound
			}
			return fmt.Errorf("create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func GetAddress(ctx context.Context, db sqlx.ExtContext, userID string, id int64) (*models.Address, error) {
	address := &models.Address{}

	err := sqlx.GetContext(ctx, db, address,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrAddressNotFound
		}
		return nil, fmt.Errorf("get address: %w", err)
	}

	return address, nil
}

func ListAddresses(ctx context.Context, db sqlx.ExtContext, userID string) ([]models.Address, error) {
	addresses := []models.Address{}

	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	if err := sqlx.SelectContext(ctx, db, &addresses, query, userID); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	return addresses, nil
}

func UpdateAddress(ctx context.Context, db *sqlx.DB, userID string, id int64, in AddressInput) (*models.Address, error) {
	address := &models.Address{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		if in.IsDefault {
			if err := clearDefaultAddress(ctx, tx, userID); err != nil {
				return err
			}
		}

		query := `
			UPDATE addresses
			SET full_name = $1, line1 = $2, line2 = $3, city = $4, state = $5, postal_code = $6,
			    country = $7, phone = $8, is_default = $9, updated_at = NOW()
			WHERE id = $10 AND user_id = $11
			RETURNING ` + addressColumns

		err := sqlx.GetContext(ctx, tx, address, query,
			in.FullName, in.Line1, in.Line2, in.City, in.State, in.PostalCode, in.Country, in.Phone, in.IsDefault, id, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return database.ErrAddressNotFound
			}
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func DeleteAddress(ctx context.Context, db sqlx.ExtContext, userID string, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	return expectAffected(result, database.ErrAddressNotFound)
}

func clearDefaultAddress(ctx context.Context, tx *sqlx.Tx, userID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`,
		userID)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}
