package api

import (
	"fmt"
	"net/http"

	"github.com/safar/printshop/internal/mailer"
	"github.com/safar/printshop/internal/store"
)

func (s *Server) handleContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.ContactInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		msg, err := store.CreateContactMessage(r.Context(), s.db, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := s.mailer.Send(r.Context(), mailer.ContactNotification(s.opts.ContactInbox, msg)); err != nil {
			s.respondErr(w, r, fmt.Errorf("notify contact inbox for message %d: %w", msg.ID, err))
			return
		}

		s.respondJSON(w, http.StatusCreated, msg)
	}
}

func (s *Server) handleSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := store.GetSummary(r.Context(), s.db)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, summary)
	}
}
