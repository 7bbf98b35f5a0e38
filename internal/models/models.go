package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

type Customer struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Version   int       `json:"version" db:"version"`
}

type Address struct {
	ID         int64     `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FullName   string    `json:"full_name" db:"full_name"`
	Line1      string    `json:"line1" db:"line1"`
	Line2      string    `json:"line2,omitempty" db:"line2"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state,omitempty" db:"state"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	IsDefault  bool      `json:"is_default" db:"is_default"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description,omitempty" db:"description"`
	ParentID    *int64     `json:"parent_id,omitempty" db:"parent_id"`
	ImageURL    string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Children    []Category `json:"children,omitempty" db:"-"`
}

type Product struct {
	ID            int64           `json:"id" db:"id"`
	SKU           string          `json:"sku" db:"sku"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Description   string          `json:"description,omitempty" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	CategoryID    *int64          `json:"category_id,omitempty" db:"category_id"`
	Sizes         pq.StringArray  `json:"sizes" db:"sizes"`
	Colors        pq.StringArray  `json:"colors" db:"colors"`
	ImageURLs     pq.StringArray  `json:"image_urls" db:"image_urls"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	Version       int             `json:"version" db:"version"`
}

type Cart struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Items     LineItems `json:"items" db:"items"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Order struct {
	ID            int64           `json:"id" db:"id"`
	OrderNumber   string          `json:"order_number" db:"order_number"`
	UserID        string          `json:"user_id" db:"user_id"`
	CustomerEmail string          `json:"customer_email" db:"customer_email"`
	Items         LineItems       `json:"items" db:"items"`
	Status        string          `json:"status" db:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency      string          `json:"currency" db:"currency"`
	Payment       Payment         `json:"payment" db:"payment"`
	Shipping      Shipping        `json:"shipping" db:"shipping"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	Version       int             `json:"version" db:"version"`
}

type ContactMessage struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
