package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/database"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const claimsKey ctxKey = iota

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithField("panic", rec).Error("handler panicked")
				s.respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.opts.AllowedOrigin
		if origin == "" {
			origin = "*"
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate attaches the bearer token's claims to the request context.
// A missing token is fine here; a malformed or expired one is rejected.
// Role and email are reloaded from the account so that a role change or a
// removed account takes effect before the token expires.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "authorization header must be a bearer token")
			return
		}

		claims, err := s.auth.Parse(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := s.lookupUser(r.Context(), claims.UserID())
		if errors.Is(err, database.ErrUserNotFound) {
			s.respondError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		claims.Role = user.Role
		claims.Email = user.Email

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()) == nil {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !claimsFrom(r.Context()).IsAdmin() {
			s.respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}
