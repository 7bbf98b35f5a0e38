package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, sku, name, slug, description, price, category_id, sizes, colors, image_urls, stock_quantity, is_active, created_at, updated_at, version`

type ProductInput struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    *int64          `json:"category_id"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	ImageURLs     []string        `json:"image_urls"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	IsActive      *bool           `json:"is_active"`
}

type ProductFilter struct {
	CategoryID *int64
	Query      string
	ActiveOnly bool
}

func (in *ProductInput) normalize() {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.Slug = strings.TrimSpace(in.Slug); in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}
}

func (in *ProductInput) args() []interface{} {
	return []interface{}{
		in.SKU, in.Name, in.Slug, in.Description, in.Price, in.CategoryID,
		pq.StringArray(nonNil(in.Sizes)), pq.StringArray(nonNil(in.Colors)), pq.StringArray(nonNil(in.ImageURLs)),
		in.StockQuantity, *in.IsActive,
	}
}

func CreateProduct(ctx context.Context, db sqlx.ExtContext, in ProductInput) (*models.Product, error) {
	in.normalize()
	product := &models.Product{}

	query := `
		INSERT INTO products (sku, name, slug, description, price, category_id, sizes, colors, image_urls,
		                      stock_quantity, is_active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW(), 1)
		RETURNING ` + productColumns

	if err := sqlx.GetContext(ctx, db, product, query, in.args()...); err != nil {
		return nil, productWriteError("create product", in.SKU, err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db sqlx.ExtContext, id int64) (*models.Product, error) {
	return getProductWhere(ctx, db, `id = $1`, id)
}

func GetProductBySlug(ctx context.Context, db sqlx.ExtContext, productSlug string) (*models.Product, error) {
	return getProductWhere(ctx, db, `slug = $1`, productSlug)
}

func getProductWhere(ctx context.Context, db sqlx.ExtContext, where string, arg interface{}) (*models.Product, error) {
	product := &models.Product{}

	err := sqlx.GetContext(ctx, db, product, `SELECT `+productColumns+` FROM products WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func UpdateProduct(ctx context.Context, db sqlx.ExtContext, id int64, in ProductInput) (*models.Product, error) {
	in.normalize()
	product := &models.Product{}

	query := `
		UPDATE products
		SET sku = $1, name = $2, slug = $3, description = $4, price = $5, category_id = $6,
		    sizes = $7, colors = $8, image_urls = $9, stock_quantity = $10, is_active = $11,
		    updated_at = NOW(), version = version + 1
		WHERE id = $12
		RETURNING ` + productColumns

	args := append(in.args(), id)
	if err := sqlx.GetContext(ctx, db, product, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, productWriteError("update product", in.SKU, err)
	}

	return product, nil
}

func DeleteProduct(ctx context.Context, db sqlx.ExtContext, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return expectAffected(result, database.ErrProductNotFound)
}

func ListProducts(ctx context.Context, db sqlx.ExtContext, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(category_id = $%d OR category_id IN (SELECT id FROM categories WHERE parent_id = $%d))`, n, n))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)`, n, n, n))
	}
	if filter.ActiveOnly {
		conds = append(conds, `is_active`)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := sqlx.GetContext(ctx, db, &total, `SELECT COUNT(*) FROM products `+where, args...); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, productColumns, where, n+1, n+2)

	products := []models.Product{}
	args = append(args, pageSize, (page-1)*pageSize)
	if err := sqlx.SelectContext(ctx, db, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

func productWriteError(op, sku string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("product %s: %w", sku, database.ErrAlreadyExists)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("product category: %w", database.ErrInvalidReference)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
