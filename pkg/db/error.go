package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsSerializationErr reports whether err is the store's serialization-failure
// signal for a conflicting SERIALIZABLE transaction. The loser of such a
// conflict must be surfaced to the caller as retryable.
func IsSerializationErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	// PostgreSQL (error code 40001)
	if strings.Contains(msg, "could not serialize access") {
		return true
	}

	// MySQL (error codes 1213 deadlock, 1205 lock wait timeout)
	if strings.Contains(msg, "Error 1213") || strings.Contains(msg, "Error 1205") {
		return true
	}

	// SQLite under concurrent writers
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return true
	}

	return false
}
