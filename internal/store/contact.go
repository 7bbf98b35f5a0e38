package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/models"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required,max=5000"`
}

func CreateContactMessage(ctx context.Context, db sqlx.ExtContext, in ContactInput) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{}

	query := `
		INSERT INTO contact_messages (name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, email, subject, message, created_at`

	if err := sqlx.GetContext(ctx, db, msg, query, in.Name, in.Email, in.Subject, in.Message); err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	return msg, nil
}
