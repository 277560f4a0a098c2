package database

import (
	"strings"
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint or
// unique index rejecting a write. Both SQLite drivers behind sqliteshim report
// it with the same message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err came from SQLite refusing a write
// that would leave a dangling reference.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
