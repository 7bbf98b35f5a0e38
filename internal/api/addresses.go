package api

import (
	"net/http"

	"github.com/safar/printshop/internal/store"
)

// Addresses are always scoped to the caller; another user's address id
// reads as missing.

func (s *Server) handleListAddresses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addresses, err := store.ListAddresses(r.Context(), s.db, claimsFrom(r.Context()).UserID())
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, addresses)
	}
}

func (s *Server) handleCreateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.AddressInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		address, err := store.CreateAddress(r.Context(), s.db, claimsFrom(r.Context()).UserID(), in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, address)
	}
}

func (s *Server) handleGetAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		address, err := store.GetAddress(r.Context(), s.db, claimsFrom(r.Context()).UserID(), id)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, address)
	}
}

func (s *Server) handleUpdateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		var in store.AddressInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		address, err := store.UpdateAddress(r.Context(), s.db, claimsFrom(r.Context()).UserID(), id, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, address)
	}
}

func (s *Server) handleDeleteAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := store.DeleteAddress(r.Context(), s.db, claimsFrom(r.Context()).UserID(), id); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
