package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by the repositories. Modules translate these
// into their own taxonomy at the service boundary.
var (
	ErrDuplicateKey     = errors.New("unique constraint violation")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	ErrSlotInactive     = errors.New("slot is no longer active")
	ErrSlotOccupied     = errors.New("slot has reserved capacity")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrNotCancellable   = errors.New("booking is in a terminal state")
)

// IsUniqueViolation detects a unique-index conflict from either
// backend: PostgreSQL reports SQLSTATE 23505, the sqlite driver only a
// message. Raced inserts must surface as Conflict, not as raw driver
// errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed") && strings.Contains(msg, "unique")
}

func translateUnique(err error) error {
	if IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}
