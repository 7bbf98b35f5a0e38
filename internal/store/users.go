package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func CreateUser(ctx context.Context, db sqlx.ExtContext, email, name, passwordHash, role string) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + userColumns

	err := sqlx.GetContext(ctx, db, user, query,
		uuid.NewString(), strings.ToLower(email), name, passwordHash, role)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", email, database.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db sqlx.ExtContext, id string) (*models.User, error) {
	user := &models.User{}

	err := sqlx.GetContext(ctx, db, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func GetUserByEmail(ctx context.Context, db sqlx.ExtContext, email string) (*models.User, error) {
	user := &models.User{}

	err := sqlx.GetContext(ctx, db, user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

func UpdateUserRole(ctx context.Context, db sqlx.ExtContext, id, role string) (*models.User, error) {
	user := &models.User{}

	query := `
		UPDATE users SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	err := sqlx.GetContext(ctx, db, user, query, role, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db sqlx.ExtContext, page, pageSize int) (*OffsetPage, error) {
	var total int64
	if err := sqlx.GetContext(ctx, db, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	users := []models.User{}
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	if err := sqlx.SelectContext(ctx, db, &users, query, pageSize, (page-1)*pageSize); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return newOffsetPage(users, total, page, pageSize), nil
}
