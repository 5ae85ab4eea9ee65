package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrCapacityReached is returned when an event has no seats left.
	ErrCapacityReached = errors.New("capacity reached")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func normalizeStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
