package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/database"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// requestError is a client mistake reported back verbatim with a 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.log.WithError(err).Error("encode JSON response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: message}); err != nil {
		s.log.WithError(err).Error("encode JSON response")
	}
}

// respondErr maps err onto an HTTP status. Anything
// unrecognised is logged and hidden behind a generic message.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		s.respondError(w, http.StatusBadRequest, reqErr.msg)
	case errors.Is(err, database.ErrAlreadyExists),
		errors.Is(err, database.ErrInvalidReference),
		errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrCategoryNesting),
		errors.Is(err, database.ErrCartEmpty),
		errors.Is(err, database.ErrNoItems),
		errors.Is(err, database.ErrProductInactive):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		s.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrCustomerNotFound),
		errors.Is(err, database.ErrAddressNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case isGatewayUnavailable(err):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func (s *Server) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	return s.check(dst)
}

func (s *Server) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return badRequest(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "len":
		return field + " must have length " + fe.Param()
	case "oneof":
		return field + " must be one of " + fe.Param()
	}
	return field + " is invalid"
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
