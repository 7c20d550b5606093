package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports unique-constraint violations across the
// supported dialects, with or without gorm's error translation.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"duplicate key value violates unique constraint", // postgres 23505
		"Error 1062",               // mysql
		"UNIQUE constraint failed", // sqlite 2067
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
