package store_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
	"github.com/shopspring/decimal"
)

func createUser(t *testing.T, db *sqlx.DB, email string) *models.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), db, email, "Test User", "hash", models.RoleCustomer)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func createProduct(t *testing.T, db *sqlx.DB, sku string, price int64) *models.Product {
	t.Helper()

	product, err := store.CreateProduct(context.Background(), db, store.ProductInput{
		SKU:           sku,
		Name:          "Tee " + sku,
		Price:         decimal.NewFromInt(price),
		Sizes:         []string{"S", "M", "L"},
		Colors:        []string{"black", "white"},
		StockQuantity: 100,
	})
	if err != nil {
		t.Fatalf("Create product %s: %v", sku, err)
	}
	return product
}

var testShipping = models.Shipping{
	Name:       "Ada Lovelace",
	Line1:      "12 Print Street",
	City:       "London",
	PostalCode: "N1 9GU",
	Country:    "GB",
}
