// internal/storage/errors.go
package storage

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Specific errors for catalog operations
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSetNotFound         = errors.New("card set not found")
	ErrLanguageNotFound    = errors.New("language not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUsernameExists      = errors.New("username already exists")
	ErrAlreadyCollected    = errors.New("set is already in the user's collection")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// isConstraintViolation reports whether err is any SQLite constraint failure.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
