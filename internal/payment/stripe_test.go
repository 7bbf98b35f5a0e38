package payment

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v79"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway("")

	_, err := g.CreateIntent(context.Background(), IntentRequest{Amount: 100, Currency: "usd"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.GetIntent(context.Background(), "pi_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFromStripe(t *testing.T) {
	intent := fromStripe(&stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Status:       stripe.PaymentIntentStatusSucceeded,
		Amount:       2599,
		Currency:     stripe.CurrencyEUR,
	})

	assert.Equal(t, &Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Status:       "succeeded",
		Amount:       2599,
		Currency:     "eur",
	}, intent)
	assert.True(t, intent.Succeeded())
}
