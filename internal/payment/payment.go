// Package payment creates and inspects card payment intents at the gateway.
package payment

import (
	"context"
	"errors"
)

const ProviderStripe = "stripe"

var ErrNotConfigured = errors.New("payment gateway is not configured")

// IntentRequest is forwarded to the gateway as is. Amount is in the
// currency's minor unit.
type IntentRequest struct {
	Amount         int64
	Currency       string
	OrderID        int64
	ReceiptEmail   string
	IdempotencyKey string
}

type Intent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (i *Intent) Succeeded() bool {
	return i.Status == "succeeded"
}

type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}
