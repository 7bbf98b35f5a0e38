package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
	ErrorClassConstraint
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03", "57014":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassConstraint
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// IsUniqueViolation reports whether err is a duplicate key error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrNoItems          = errors.New("order has no items")
	ErrProductInactive  = errors.New("product is not available")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrCategoryNesting  = errors.New("categories support a single level of nesting")
)
