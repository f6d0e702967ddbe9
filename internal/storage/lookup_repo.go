// internal/storage/lookup_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

// ListLanguages returns all languages ordered by langID.
func ListLanguages(ctx context.Context, q Querier) ([]domain.Language, error) {
	rows, err := q.QueryContext(ctx, `SELECT langID, name FROM Language ORDER BY langID`)
	if err != nil {
		customLog.Warnf("Storage: Error listing languages: %v", err)
		return nil, fmt.Errorf("database error listing languages: %w", err)
	}
	defer rows.Close()

	languages := make([]domain.Language, 0)
	for rows.Next() {
		var lang domain.Language
		if err := rows.Scan(&lang.LangID, &lang.Name); err != nil {
			return nil, fmt.Errorf("failed processing languages: %w", err)
		}
		languages = append(languages, lang)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading languages: %w", err)
	}
	return languages, nil
}

// ListCategories returns all categories ordered by catID.
func ListCategories(ctx context.Context, q Querier) ([]domain.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT catID, name FROM Category ORDER BY catID`)
	if err != nil {
		customLog.Warnf("Storage: Error listing categories: %v", err)
		return nil, fmt.Errorf("database error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.CatID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed processing categories: %w", err)
		}
		categories = append(categories, cat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading categories: %w", err)
	}
	return categories, nil
}

// FindLanguage retrieves one language by id.
func FindLanguage(ctx context.Context, q Querier, langID int64) (*domain.Language, error) {
	var lang domain.Language
	err := q.QueryRowContext(ctx, `SELECT langID, name FROM Language WHERE langID = ?`, langID).Scan(&lang.LangID, &lang.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLanguageNotFound
		}
		return nil, fmt.Errorf("database error finding language: %w", err)
	}
	return &lang, nil
}

// FindCategory retrieves one category by id.
func FindCategory(ctx context.Context, q Querier, catID int64) (*domain.Category, error) {
	var cat domain.Category
	err := q.QueryRowContext(ctx, `SELECT catID, name FROM Category WHERE catID = ?`, catID).Scan(&cat.CatID, &cat.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database error finding category: %w", err)
	}
	return &cat, nil
}
