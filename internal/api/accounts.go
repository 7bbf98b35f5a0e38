package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		user, err := store.CreateUser(r.Context(), s.db, req.Email, strings.TrimSpace(req.Name), hash, models.RoleCustomer)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		s.issueSession(w, r, http.StatusCreated, user)
	}
}

func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		user, err := store.GetUserByEmail(r.Context(), s.db, req.Email)
		if errors.Is(err, database.ErrUserNotFound) {
			// Unknown email and wrong password look the same to the caller.
			err = auth.ErrInvalidCredentials
		}
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
			s.respondErr(w, r, err)
			return
		}

		s.issueSession(w, r, http.StatusOK, user)
	}
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := s.auth.Issue(user)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, status, session{User: user, Token: token})
}

func (s *Server) handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := store.GetUser(r.Context(), s.db, claimsFrom(r.Context()).UserID())
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, user)
	}
}

func (s *Server) handleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, err := pageParams(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		result, err := store.ListUsers(r.Context(), s.db, page, pageSize)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := store.GetUser(r.Context(), s.db, r.PathValue("id"))
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, user)
	}
}

func (s *Server) handleUpdateUserRole() http.HandlerFunc {
	type request struct {
		Role string `json:"role" validate:"required,oneof=customer admin"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := s.decode(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}

		user, err := store.UpdateUserRole(r.Context(), s.db, r.PathValue("id"), req.Role)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, user)
	}
}
