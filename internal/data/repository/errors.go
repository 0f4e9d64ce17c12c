package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Conditional writes that matched no row report one of these.
var (
	ErrSlotConflict      = errors.New("slot no longer available")
	ErrAlreadyMaxed      = errors.New("discount code usage cap reached")
	ErrInsufficientFunds = errors.New("gift card balance insufficient")
	ErrExhausted         = errors.New("package has no sessions remaining")
	ErrDuplicate         = errors.New("duplicate record")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
