package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/payment"
	"github.com/safar/printshop/internal/store"
)

type intentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	OrderID  int64  `json:"order_id" validate:"omitempty,gt=0"`
}

type confirmRequest struct {
	OrderID         int64  `json:"order_id" validate:"required,gt=0"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func (s *Server) handleCreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req intentRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = s.opts.DefaultCurrency
		}

		var order *models.Order
		key := uuid.NewString()
		if req.OrderID != 0 {
			var err error
			if order, err = s.visibleOrder(r, req.OrderID); err != nil {
				s.respondErr(w, r, err)
				return
			}
			if order.Payment.Status == models.PaymentStatusSucceeded {
				s.respondErr(w, r, badRequest("order is already paid"))
				return
			}
			if order.Status != models.OrderStatusPending {
				s.respondErr(w, r, badRequest("order is "+order.Status+", payment is only taken for pending orders"))
				return
			}
			// Retried checkouts for the same order and amount reuse the intent.
			key = fmt.Sprintf("order-%d-%d-%s", order.ID, req.Amount, currency)
		}

		intent, err := s.gateway.CreateIntent(r.Context(), payment.IntentRequest{
			Amount:         req.Amount,
			Currency:       currency,
			OrderID:        req.OrderID,
			ReceiptEmail:   claimsFrom(r.Context()).Email,
			IdempotencyKey: key,
		})
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if order != nil {
			_, err := store.SetOrderPayment(r.Context(), s.db, order.ID, models.Payment{
				Provider: payment.ProviderStripe,
				IntentID: intent.ID,
				Status:   intent.Status,
				Amount:   intent.Amount,
				Currency: intent.Currency,
			})
			if err != nil {
				s.respondErr(w, r, err)
				return
			}
		}

		s.respondJSON(w, http.StatusCreated, intent)
	}
}

func (s *Server) handleConfirmPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		order, err := s.visibleOrder(r, req.OrderID)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		// Only the intent recorded by POST /payments/intent for this order
		// can settle it.
		if order.Payment.IntentID == "" {
			s.respondErr(w, r, badRequest("order has no payment intent"))
			return
		}
		if order.Payment.IntentID != req.PaymentIntentID {
			s.respondErr(w, r, badRequest("payment_intent_id does not belong to this order"))
			return
		}

		intent, err := s.gateway.GetIntent(r.Context(), req.PaymentIntentID)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		record := models.Payment{
			Provider: payment.ProviderStripe,
			IntentID: intent.ID,
			Status:   intent.Status,
			Amount:   intent.Amount,
			Currency: intent.Currency,
		}
		if intent.Succeeded() {
			now := time.Now().UTC()
			record.PaidAt = &now
		}

		updated, err := store.SetOrderPayment(r.Context(), s.db, order.ID, record)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		if updated.Status != order.Status {
			s.publishStatus(r.Context(), updated)
		}

		s.respondJSON(w, http.StatusOK, updated)
	}
}

func isGatewayUnavailable(err error) bool {
	return errors.Is(err, payment.ErrNotConfigured)
}
