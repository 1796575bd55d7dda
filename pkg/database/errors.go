package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsUniqueViolation recognises translated gorm errors and falls back to the
// driver message for dialects that do not translate.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
