package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product variant in a cart or order.
type LineItem struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type LineItems []LineItem

// Total sums price times quantity over all items.
func (items LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (items LineItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *LineItems) Scan(src interface{}) error {
	return scanJSON(src, items)
}

type Payment struct {
	Provider string     `json:"provider,omitempty"`
	IntentID string     `json:"intent_id,omitempty"`
	Status   string     `json:"status,omitempty"`
	Amount   int64      `json:"amount,omitempty"`
	Currency string     `json:"currency,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

func (p Payment) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Payment) Scan(src interface{}) error {
	return scanJSON(src, p)
}

type Shipping struct {
	Name           string `json:"name" validate:"required"`
	Line1          string `json:"line1" validate:"required"`
	Line2          string `json:"line2,omitempty"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state,omitempty"`
	PostalCode     string `json:"postal_code" validate:"required"`
	Country        string `json:"country" validate:"required"`
	Phone          string `json:"phone,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

func (s Shipping) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Shipping) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
}
