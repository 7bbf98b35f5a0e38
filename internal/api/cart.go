package api

import (
	"net/http"

	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
)

type cartRequest struct {
	Items models.LineItems `json:"items" validate:"dive"`
}

func (s *Server) handleGetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := store.GetCart(r.Context(), s.db, claimsFrom(r.Context()).UserID())
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, cart)
	}
}

func (s *Server) handleSaveCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		cart, err := store.SaveCart(r.Context(), s.db, claimsFrom(r.Context()).UserID(), req.Items)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, cart)
	}
}

func (s *Server) handleClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := claimsFrom(r.Context()).UserID()
		if err := store.ClearCart(r.Context(), s.db, userID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, models.Cart{UserID: userID, Items: models.LineItems{}})
	}
}
