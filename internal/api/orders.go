package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/events"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
	"github.com/sirupsen/logrus"
)

type createOrderRequest struct {
	Items     models.LineItems `json:"items" validate:"dive"`
	FromCart  bool             `json:"from_cart"`
	AddressID int64            `json:"address_id"`
	Shipping  models.Shipping  `json:"shipping" validate:"-"`
	Currency  string           `json:"currency" validate:"omitempty,len=3"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func shippingFromAddress(a *models.Address) models.Shipping {
	return models.Shipping{
		Name:       a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

func (s *Server) handleCreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())

		var req createOrderRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if !req.FromCart && len(req.Items) == 0 {
			s.respondErr(w, r, database.ErrNoItems)
			return
		}

		if req.AddressID != 0 {
			address, err := store.GetAddress(r.Context(), s.db, claims.UserID(), req.AddressID)
			if err != nil {
				s.respondErr(w, r, err)
				return
			}
			req.Shipping = shippingFromAddress(address)
		}
		if err := s.check(&req.Shipping); err != nil {
			s.respondErr(w, r, err)
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = s.opts.DefaultCurrency
		}

		order, err := store.CreateOrder(r.Context(), s.db, store.CreateOrderRequest{
			UserID:        claims.UserID(),
			CustomerEmail: claims.Email,
			Items:         req.Items,
			FromCart:      req.FromCart,
			Currency:      currency,
			Shipping:      req.Shipping,
		})
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		s.log.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"user_id":      order.UserID,
		}).Info("order created")

		s.respondJSON(w, http.StatusCreated, order)
	}
}

func (s *Server) handleListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		q := r.URL.Query()

		if claims.IsAdmin() {
			if status := q.Get("status"); status != "" && !models.ValidOrderStatus(status) {
				s.respondErr(w, r, badRequest("invalid status "+strconv.Quote(status)))
				return
			}
			page, pageSize, err := pageParams(r)
			if err != nil {
				s.respondErr(w, r, err)
				return
			}
			filter := store.OrderFilter{Status: q.Get("status"), UserID: q.Get("user_id")}
			result, err := store.ListOrders(r.Context(), s.db, filter, page, pageSize)
			if err != nil {
				s.respondErr(w, r, err)
				return
			}
			s.respondJSON(w, http.StatusOK, result)
			return
		}

		cursor := q.Get("cursor")
		if _, err := store.DecodeCursor(cursor); err != nil {
			s.respondErr(w, r, badRequest("invalid cursor"))
			return
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		result, err := store.ListOrdersCursor(r.Context(), s.db, claims.UserID(), cursor, limit)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
	}
}

// visibleOrder loads an order the caller may see. Other users' orders
// are reported as missing.
func (s *Server) visibleOrder(r *http.Request, id int64) (*models.Order, error) {
	order, err := store.GetOrder(r.Context(), s.db, id)
	if err != nil {
		return nil, err
	}
	claims := claimsFrom(r.Context())
	if !claims.IsAdmin() && order.UserID != claims.UserID() {
		return nil, database.ErrOrderNotFound
	}
	return order, nil
}

func (s *Server) handleGetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		order, err := s.visibleOrder(r, id)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, order)
	}
}

func (s *Server) handleReplaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		var doc models.Order
		if err := s.decode(r, &doc); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if !models.ValidOrderStatus(doc.Status) {
			s.respondErr(w, r, badRequest("invalid status "+strconv.Quote(doc.Status)))
			return
		}

		previous, err := store.GetOrder(r.Context(), s.db, id)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		order, err := store.ReplaceOrder(r.Context(), s.db, id, doc)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		if order.Status != previous.Status {
			s.publishStatus(r.Context(), order)
		}
		s.respondJSON(w, http.StatusOK, order)
	}
}

func (s *Server) handleUpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		var req orderStatusRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			s.respondErr(w, r, badRequest("invalid status "+strconv.Quote(req.Status)))
			return
		}

		order, err := store.UpdateOrderStatus(r.Context(), s.db, id, req.Status)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		s.publishStatus(r.Context(), order)
		s.respondJSON(w, http.StatusOK, order)
	}
}

func (s *Server) handleDeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := store.DeleteOrder(r.Context(), s.db, id); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}

// publishStatus never fails the request; the status change is already
// committed.
func (s *Server) publishStatus(ctx context.Context, order *models.Order) {
	event := events.NewOrderStatusEvent(order)
	if err := s.events.PublishOrderStatus(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).WithError(err).Warn("publish order status event")
	}
}
