package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
)

const customerColumns = `id, user_id, first_name, last_name, email, phone, notes, created_at, updated_at, version`

type CustomerInput struct {
	UserID    *string `json:"user_id"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone"`
	Notes     string  `json:"notes"`
}

func CreateCustomer(ctx context.Context, db sqlx.ExtContext, in CustomerInput) (*models.Customer, error) {
	customer := &models.Customer{}

	query := `
		INSERT INTO customers (user_id, first_name, last_name, email, phone, notes, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING ` + customerColumns

	err := sqlx.GetContext(ctx, db, customer, query,
		in.UserID, in.FirstName, in.LastName, strings.ToLower(in.Email), in.Phone, in.Notes)
	if err != nil {
		return nil, customerWriteError("create customer", in.Email, err)
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, db sqlx.ExtContext, id int64) (*models.Customer, error) {
	customer := &models.Customer{}

	err := sqlx.GetContext(ctx, db, customer, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

func UpdateCustomer(ctx context.Context, db sqlx.ExtContext, id int64, in CustomerInput) (*models.Customer, error) {
	customer := &models.Customer{}

	query := `
		UPDATE customers
		SET user_id = $1, first_name = $2, last_name = $3, email = $4, phone = $5, notes = $6,
		    updated_at = NOW(), version = version + 1
		WHERE id = $7
		RETURNING ` + customerColumns

	err := sqlx.GetContext(ctx, db, customer, query,
		in.UserID, in.FirstName, in.LastName, strings.ToLower(in.Email), in.Phone, in.Notes, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCustomerNotFound
		}
		return nil, customerWriteError("update customer", in.Email, err)
	}

	return customer, nil
}

func DeleteCustomer(ctx context.Context, db sqlx.ExtContext, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	return expectAffected(result, database.ErrCustomerNotFound)
}

// ListCustomers pages through customers, optionally filtered by a
// case-insensitive match on name or email.
func ListCustomers(ctx context.Context, db sqlx.ExtContext, search string, page, pageSize int) (*OffsetPage, error) {
	where := ""
	args := []interface{}{}
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		where = `WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`
	}

	var total int64
	if err := sqlx.GetContext(ctx, db, &total, `SELECT COUNT(*) FROM customers `+where, args...); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, customerColumns, where, n+1, n+2)

	customers := []models.Customer{}
	args = append(args, pageSize, (page-1)*pageSize)
	if err := sqlx.SelectContext(ctx, db, &customers, query, args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return newOffsetPage(customers, total, page, pageSize), nil
}

func customerWriteError(op, email string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("customer %s: %w", email, database.ErrAlreadyExists)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("customer user: %w", database.ErrInvalidReference)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
