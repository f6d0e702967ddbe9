// internal/storage/set_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

const setColumns = `setID, title, description, language, category, creator, lastUpdate, viewCount`

// SummaryColumns selects a set's display projection. It expects CardSet
// aliased as s, Language as l and Category as c.
const SummaryColumns = `s.setID, s.title, s.description, l.name AS language, c.name AS category,
	s.creator, s.lastUpdate, s.viewCount`

// SetFilter narrows ListSets. Zero values mean "no filter"; a zero Limit means no limit.
type SetFilter struct {
	LanguageID     int64
	CategoryID     int64
	ExcludeCreator string
	Limit          int
	Offset         int
}

// InsertSet creates a CardSet row with viewCount 0 and returns its setID.
// A nil Description leaves the column NULL.
func InsertSet(ctx context.Context, q Querier, set *domain.CardSet) (int64, error) {
	sqlStatement := `INSERT INTO CardSet (title, description, language, category, creator, lastUpdate, viewCount)
		VALUES (?, ?, ?, ?, ?, ?, 0)`
	result, err := q.ExecContext(ctx, sqlStatement,
		set.Title, nullableString(set.Description), set.Language, set.Category, set.Creator, set.LastUpdate)
	if err != nil {
		if isConstraintViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to insert set '%s' for %s: %v", set.Title, set.Creator, err)
		return 0, fmt.Errorf("database error during set creation: %w", err)
	}

	setID, err := result.LastInsertId()
	if err != nil {
		customLog.Warnf("Storage: Failed to get last insert ID for set '%s': %v", set.Title, err)
		return 0, fmt.Errorf("failed to retrieve set ID after creation: %w", err)
	}
	return setID, nil
}

// UpdateSet rewrites the scalar fields of a set. Description is only
// written when non-nil, so an absent description keeps its stored value.
func UpdateSet(ctx context.Context, q Querier, set *domain.CardSet) error {
	setClauses := []string{"title = ?", "language = ?", "category = ?", "lastUpdate = ?"}
	args := []any{set.Title, set.Language, set.Category, set.LastUpdate}

	if set.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *set.Description)
	}
	args = append(args, set.SetID)

	// nolint:gosec // setClauses only contains hardcoded column names
	sqlStatement := fmt.Sprintf("UPDATE CardSet SET %s WHERE setID = ?", strings.Join(setClauses, ", "))
	result, err := q.ExecContext(ctx, sqlStatement, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to update set %d: %v", set.SetID, err)
		return fmt.Errorf("database error during set update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm set update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSetNotFound
	}
	return nil
}

// DeleteSet removes the CardSet row. A missing set is not an error.
func DeleteSet(ctx context.Context, q Querier, setID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM CardSet WHERE setID = ?`, setID); err != nil {
		customLog.Warnf("Storage: Error deleting set %d: %v", setID, err)
		return fmt.Errorf("database error deleting set: %w", err)
	}
	return nil
}

// FindSetByID retrieves the raw CardSet row.
func FindSetByID(ctx context.Context, q Querier, setID int64) (*domain.CardSet, error) {
	row := q.QueryRowContext(ctx, `SELECT `+setColumns+` FROM CardSet WHERE setID = ?`, setID)
	set, err := scanSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		customLog.Warnf("Storage: Failed to find set %d: %v", setID, err)
		return nil, fmt.Errorf("database error finding set: %w", err)
	}
	return set, nil
}

// FindSetView retrieves the display projection of one set.
func FindSetView(ctx context.Context, q Querier, setID int64) (*domain.SetSummary, error) {
	query := `SELECT ` + SummaryColumns + `
		FROM CardSet s
		INNER JOIN Language l ON l.langID = s.language
		INNER JOIN Category c ON c.catID = s.category
		WHERE s.setID = ?`
	summary, err := scanSummary(q.QueryRowContext(ctx, query, setID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		customLog.Warnf("Storage: Failed to load set view %d: %v", setID, err)
		return nil, fmt.Errorf("database error loading set: %w", err)
	}
	return summary, nil
}

// IncrementViewCount bumps viewCount by one in a single statement so
// concurrent viewers never lose an increment.
func IncrementViewCount(ctx context.Context, q Querier, setID int64) error {
	result, err := q.ExecContext(ctx, `UPDATE CardSet SET viewCount = viewCount + 1 WHERE setID = ?`, setID)
	if err != nil {
		customLog.Warnf("Storage: Failed to increment view count for set %d: %v", setID, err)
		return fmt.Errorf("database error incrementing view count: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm view count update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSetNotFound
	}
	return nil
}

// ListSets returns sets matching filter ordered by setID.
func ListSets(ctx context.Context, q Querier, filter SetFilter) ([]domain.CardSet, error) {
	var where []string
	var args []any

	if filter.LanguageID != 0 {
		where = append(where, "language = ?")
		args = append(args, filter.LanguageID)
	}
	if filter.CategoryID != 0 {
		where = append(where, "category = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.ExcludeCreator != "" {
		where = append(where, "creator <> ?")
		args = append(args, filter.ExcludeCreator)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + setColumns + ` FROM CardSet`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY setID")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		customLog.Warnf("Storage: Error listing sets: %v", err)
		return nil, fmt.Errorf("database error listing sets: %w", err)
	}
	defer rows.Close()
	return collectSets(rows)
}

// ListCollectedSets returns the sets username has in their collection.
func ListCollectedSets(ctx context.Context, q Querier, username string) ([]domain.CardSet, error) {
	query := `SELECT s.setID, s.title, s.description, s.language, s.category, s.creator, s.lastUpdate, s.viewCount
		FROM CardSet s
		INNER JOIN UserCollection u ON u.setID = s.setID
		WHERE u.username = ?
		ORDER BY s.setID`
	rows, err := q.QueryContext(ctx, query, username)
	if err != nil {
		customLog.Warnf("Storage: Error listing collection of %s: %v", username, err)
		return nil, fmt.Errorf("database error listing collection: %w", err)
	}
	defer rows.Close()
	return collectSets(rows)
}

// ScanSetSummaries drains rows selected with SummaryColumns.
func ScanSetSummaries(rows *sql.Rows) ([]domain.SetSummary, error) {
	summaries := make([]domain.SetSummary, 0)
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing set list: %w", err)
		}
		summaries = append(summaries, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading set list: %w", err)
	}
	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(row rowScanner) (*domain.CardSet, error) {
	var set domain.CardSet
	var description sql.NullString
	if err := row.Scan(&set.SetID, &set.Title, &description, &set.Language, &set.Category,
		&set.Creator, &set.LastUpdate, &set.ViewCount); err != nil {
		return nil, err
	}
	set.Description = stringPtr(description)
	return &set, nil
}

func scanSummary(row rowScanner) (*domain.SetSummary, error) {
	var summary domain.SetSummary
	var description sql.NullString
	if err := row.Scan(&summary.SetID, &summary.Title, &description, &summary.Language, &summary.Category,
		&summary.Creator, &summary.LastUpdate, &summary.ViewCount); err != nil {
		return nil, err
	}
	summary.Description = stringPtr(description)
	return &summary, nil
}

func collectSets(rows *sql.Rows) ([]domain.CardSet, error) {
	sets := make([]domain.CardSet, 0)
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			customLog.Warnf("Storage: Error scanning set row: %v", err)
			return nil, fmt.Errorf("failed processing set list: %w", err)
		}
		sets = append(sets, *set)
	}
	if err := rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating set rows: %v", err)
		return nil, fmt.Errorf("failed reading set list: %w", err)
	}
	return sets, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
