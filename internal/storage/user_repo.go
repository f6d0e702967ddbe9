// internal/storage/user_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

const userColumns = `username, firstName, lastName, email, birthday, password, isAdmin, avatar, lastLogin, registerDate`

// CreateUser inserts a new user row. The caller supplies an already hashed password.
func CreateUser(ctx context.Context, q Querier, user *domain.User) error {
	sqlStatement := `INSERT INTO User (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, sqlStatement,
		user.Username, user.FirstName, user.LastName, user.Email, user.Birthday,
		user.PasswordHash, user.IsAdmin, user.Avatar, user.LastLogin, user.RegisterDate)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", user.Username, err)
		return fmt.Errorf("database error during user creation: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by their username.
func FindUserByUsername(ctx context.Context, q Querier, username string) (*domain.User, error) {
	sqlStatement := `SELECT ` + userColumns + ` FROM User WHERE username = ? LIMIT 1`
	row := q.QueryRowContext(ctx, sqlStatement, username)

	var user domain.User
	err := row.Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.Birthday,
		&user.PasswordHash, &user.IsAdmin, &user.Avatar, &user.LastLogin, &user.RegisterDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user %s: %v", username, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}

// UserExists reports whether a user row exists for username.
func UserExists(ctx context.Context, q Querier, username string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM User WHERE username = ?`, username).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		customLog.Warnf("Storage: Failed checking user %s: %v", username, err)
		return false, fmt.Errorf("database error checking user: %w", err)
	}
	return true, nil
}

// UpdateUserProfile overwrites the editable profile fields of a user.
func UpdateUserProfile(ctx context.Context, q Querier, user *domain.User) error {
	sqlStatement := `UPDATE User
		SET password = ?, firstName = ?, lastName = ?, email = ?, birthday = ?, avatar = ?
		WHERE username = ?`
	result, err := q.ExecContext(ctx, sqlStatement,
		user.PasswordHash, user.FirstName, user.LastName, user.Email, user.Birthday, user.Avatar, user.Username)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to update user %s: %v", user.Username, err)
		return fmt.Errorf("database error during user update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm user update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TouchLastLogin sets lastLogin for a user to at.
func TouchLastLogin(ctx context.Context, q Querier, username string, at time.Time) error {
	result, err := q.ExecContext(ctx, `UPDATE User SET lastLogin = ? WHERE username = ?`, at, username)
	if err != nil {
		customLog.Warnf("Storage: Failed to update lastLogin for %s: %v", username, err)
		return fmt.Errorf("database error updating last login: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm last login update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
