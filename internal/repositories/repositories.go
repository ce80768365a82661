// Package repositories holds the sqlx-backed data access layer. Each
// repository owns its tables and SQL functions and migrates them on
// construction. Verification decisions and the performance report go
// through Postgres functions so the database stays the single authority
// over status transitions and aggregation.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
)

// uniqueViolation reports whether err is a Postgres unique_violation.
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
