// internal/storage/collection_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddToCollection records that username collected setID.
// A second add of the same pair fails with ErrAlreadyCollected.
func AddToCollection(ctx context.Context, q Querier, username string, setID int64) error {
	_, err := q.ExecContext(ctx, `INSERT INTO UserCollection (username, setID) VALUES (?, ?)`, username, setID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyCollected
		}
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to add set %d to collection of %s: %v", setID, username, err)
		return fmt.Errorf("database error adding to collection: %w", err)
	}
	return nil
}

// RemoveFromCollection deletes the (username, setID) row if present.
func RemoveFromCollection(ctx context.Context, q Querier, username string, setID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM UserCollection WHERE username = ? AND setID = ?`, username, setID)
	if err != nil {
		customLog.Warnf("Storage: Failed to remove set %d from collection of %s: %v", setID, username, err)
		return fmt.Errorf("database error removing from collection: %w", err)
	}
	return nil
}

// HasInCollection reports whether username collected setID.
func HasInCollection(ctx context.Context, q Querier, username string, setID int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM UserCollection WHERE username = ? AND setID = ?`, username, setID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		customLog.Warnf("Storage: Failed checking collection of %s for set %d: %v", username, setID, err)
		return false, fmt.Errorf("database error checking collection: %w", err)
	}
	return true, nil
}

// DeleteCollectionsForSet removes every collection row pointing at setID.
func DeleteCollectionsForSet(ctx context.Context, q Querier, setID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM UserCollection WHERE setID = ?`, setID); err != nil {
		customLog.Warnf("Storage: Error deleting collection rows of set %d: %v", setID, err)
		return fmt.Errorf("database error deleting collection rows: %w", err)
	}
	return nil
}
