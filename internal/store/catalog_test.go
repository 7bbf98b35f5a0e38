package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/dbtest"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
	"github.com/shopspring/decimal"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Graphic Tees":           "graphic-tees",
		"  Hoodies & Sweaters  ": "hoodies-and-sweaters",
		"Kids' Wear":             "kids-wear",
	}

	for name, want := range tests {
		if got := store.Slugify(name); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", name, got, want)
		}
		if again := store.Slugify(name); again != store.Slugify(name) {
			t.Errorf("Slugify(%q) is not deterministic", name)
		}
	}
}

func TestCategoryNesting(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	apparel, err := store.CreateCategory(ctx, db, store.CategoryInput{Name: "Apparel"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	if apparel.Slug != "apparel" {
		t.Errorf("Expected derived slug apparel, got %q", apparel.Slug)
	}

	tees, err := store.CreateCategory(ctx, db, store.CategoryInput{Name: "Graphic Tees", ParentID: &apparel.ID})
	if err != nil {
		t.Fatalf("Create child category: %v", err)
	}
	if tees.ParentID == nil || *tees.ParentID != apparel.ID {
		t.Errorf("Expected parent %d, got %v", apparel.ID, tees.ParentID)
	}

	_, err = store.CreateCategory(ctx, db, store.CategoryInput{Name: "Vintage Tees", ParentID: &tees.ID})
	if !errors.Is(err, database.ErrCategoryNesting) {
		t.Errorf("Expected nesting error for grandchild, got: %v", err)
	}

	_, err = store.CreateCategory(ctx, db, store.CategoryInput{Name: "Apparel"})
	if !errors.Is(err, database.ErrAlreadyExists) {
		t.Errorf("Expected duplicate slug error, got: %v", err)
	}

	missing := int64(424242)
	_, err = store.CreateCategory(ctx, db, store.CategoryInput{Name: "Orphans", ParentID: &missing})
	if !errors.Is(err, database.ErrInvalidReference) {
		t.Errorf("Expected invalid parent error, got: %v", err)
	}

	got, err := store.GetCategoryBySlug(ctx, db, "apparel")
	if err != nil {
		t.Fatalf("Get category by slug: %v", err)
	}
	if len(got.Children) != 1 || got.Children[0].ID != tees.ID {
		t.Errorf("Expected one child %d, got %+v", tees.ID, got.Children)
	}

	top, err := store.ListCategories(ctx, db, store.CategoryFilter{TopLevel: true})
	if err != nil {
		t.Fatalf("List top-level categories: %v", err)
	}
	if len(top) != 1 {
		t.Errorf("Expected 1 top-level category, got %d", len(top))
	}

	if err := store.DeleteCategory(ctx, db, apparel.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}
	detached, err := store.GetCategory(ctx, db, tees.ID)
	if err != nil {
		t.Fatalf("Get detached child: %v", err)
	}
	if detached.ParentID != nil {
		t.Errorf("Child should be detached after parent delete, parent=%v", *detached.ParentID)
	}

	if _, err := store.GetCategory(ctx, db, apparel.ID); !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found, got: %v", err)
	}
}

func TestProductCRUD(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	category, err := store.CreateCategory(ctx, db, store.CategoryInput{Name: "Hoodies"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	product, err := store.CreateProduct(ctx, db, store.ProductInput{
		SKU:        "HOOD-001",
		Name:       "Classic Hoodie",
		Price:      decimal.RequireFromString("49.90"),
		CategoryID: &category.ID,
		Sizes:      []string{"M", "L"},
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	if product.Slug != "classic-hoodie" {
		t.Errorf("Expected slug classic-hoodie, got %q", product.Slug)
	}
	if !product.IsActive {
		t.Error("Product should default to active")
	}
	if len(product.Colors) != 0 {
		t.Errorf("Expected no colors, got %v", product.Colors)
	}

	_, err = store.CreateProduct(ctx, db, store.ProductInput{SKU: "HOOD-001", Name: "Dup", Slug: "dup"})
	if !errors.Is(err, database.ErrAlreadyExists) {
		t.Errorf("Expected duplicate sku error, got: %v", err)
	}

	inactive := false
	updated, err := store.UpdateProduct(ctx, db, product.ID, store.ProductInput{
		SKU:        "HOOD-001",
		Name:       "Classic Hoodie",
		Price:      decimal.RequireFromString("44.90"),
		CategoryID: &category.ID,
		Sizes:      []string{"S", "M", "L"},
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}
	if updated.Version != 2 || updated.IsActive || len(updated.Sizes) != 3 {
		t.Errorf("Unexpected product after update: %+v", updated)
	}

	page, err := store.ListProducts(ctx, db, store.ProductFilter{CategoryID: &category.ID}, 1, 20)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 product in category, got %d", page.Total)
	}

	active, err := store.ListProducts(ctx, db, store.ProductFilter{ActiveOnly: true}, 1, 20)
	if err != nil {
		t.Fatalf("List active products: %v", err)
	}
	if active.Total != 0 {
		t.Errorf("Expected no active products, got %d", active.Total)
	}

	if _, err := store.UpdateProduct(ctx, db, product.ID+100, store.ProductInput{SKU: "X", Name: "X"}); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found on update, got: %v", err)
	}

	if err := store.DeleteProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	if _, err := store.GetProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found, got: %v", err)
	}
}

func TestSaveCartUpsertsOneRowPerUser(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	empty, err := store.GetCart(ctx, db, "user-1")
	if err != nil {
		t.Fatalf("Get empty cart: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(empty.Items))
	}

	for i := 1; i <= 3; i++ {
		items := make(models.LineItems, i)
		for j := range items {
			items[j] = models.LineItem{ProductID: int64(j + 1), Quantity: 1, Size: "M"}
		}
		if _, err := store.SaveCart(ctx, db, "user-1", items); err != nil {
			t.Fatalf("Save cart %d: %v", i, err)
		}
	}
	if _, err := store.SaveCart(ctx, db, "user-2", models.LineItems{{ProductID: 9, Quantity: 4}}); err != nil {
		t.Fatalf("Save second cart: %v", err)
	}

	var rows int
	if err := db.GetContext(ctx, &rows, `SELECT COUNT(*) FROM carts WHERE user_id = $1`, "user-1"); err != nil {
		t.Fatalf("Count carts: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected exactly one cart row for user-1, got %d", rows)
	}

	cart, err := store.GetCart(ctx, db, "user-1")
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(cart.Items) != 3 {
		t.Errorf("Expected last write to win with 3 items, got %d", len(cart.Items))
	}

	if err := store.ClearCart(ctx, db, "user-1"); err != nil {
		t.Fatalf("Clear cart: %v", err)
	}
	cleared, err := store.GetCart(ctx, db, "user-1")
	if err != nil {
		t.Fatalf("Get cleared cart: %v", err)
	}
	if len(cleared.Items) != 0 {
		t.Errorf("Expected cleared cart, got %d items", len(cleared.Items))
	}
}
