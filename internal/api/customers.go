package api

import (
	"net/http"

	"github.com/safar/printshop/internal/store"
)

func (s *Server) handleListCustomers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, err := pageParams(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		result, err := store.ListCustomers(r.Context(), s.db, r.URL.Query().Get("q"), page, pageSize)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCreateCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.CustomerInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		customer, err := store.CreateCustomer(r.Context(), s.db, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, customer)
	}
}

func (s *Server) handleGetCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		customer, err := store.GetCustomer(r.Context(), s.db, id)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, customer)
	}
}

func (s *Server) handleUpdateCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		var in store.CustomerInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		customer, err := store.UpdateCustomer(r.Context(), s.db, id, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, customer)
	}
}

func (s *Server) handleDeleteCustomer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := store.DeleteCustomer(r.Context(), s.db, id); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}
