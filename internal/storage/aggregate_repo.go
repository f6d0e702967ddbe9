// internal/storage/aggregate_repo.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

// SortOrder orders ranked aggregate listings.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func (o SortOrder) sql() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// LanguageSetCounts lists every language with its number of sets, zero included.
func LanguageSetCounts(ctx context.Context, q Querier) ([]domain.LanguageCount, error) {
	query := `SELECT l.langID, l.name, COALESCE(ls.langCount, 0)
		FROM Language l
		LEFT JOIN LanguageSetCount ls ON l.langID = ls.langID
		ORDER BY l.langID`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		customLog.Warnf("Storage: Error counting sets per language: %v", err)
		return nil, fmt.Errorf("database error counting sets per language: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.LanguageCount, 0)
	for rows.Next() {
		var lc domain.LanguageCount
		if err := rows.Scan(&lc.LangID, &lc.Name, &lc.LangCount); err != nil {
			return nil, fmt.Errorf("failed processing language counts: %w", err)
		}
		counts = append(counts, lc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading language counts: %w", err)
	}
	return counts, nil
}

// CategorySetCounts lists every category with its number of sets, zero included.
func CategorySetCounts(ctx context.Context, q Querier) ([]domain.CategoryCount, error) {
	query := `SELECT c.catID, c.name, COALESCE(cs.catCount, 0)
		FROM Category c
		LEFT JOIN CategorySetCount cs ON c.catID = cs.catID
		ORDER BY c.catID`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		customLog.Warnf("Storage: Error counting sets per category: %v", err)
		return nil, fmt.Errorf("database error counting sets per category: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.CategoryCount, 0)
	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.CatID, &cc.Name, &cc.CatCount); err != nil {
			return nil, fmt.Errorf("failed processing category counts: %w", err)
		}
		counts = append(counts, cc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading category counts: %w", err)
	}
	return counts, nil
}

// MostCollectedSets ranks collected sets by their number of distinct collectors.
func MostCollectedSets(ctx context.Context, q Querier, order SortOrder) ([]domain.RankedSet, error) {
	query := `SELECT c.setID, c.title, c.description, m.numCollections
		FROM MostCollected m
		INNER JOIN CardSet c ON m.setID = c.setID
		ORDER BY m.numCollections ` + order.sql() + `, c.setID`
	return queryRanked(ctx, q, query, func(rs *domain.RankedSet, n int64) { rs.NumCollections = n })
}

// BiggestSets ranks sets that have cards by their card count.
func BiggestSets(ctx context.Context, q Querier, order SortOrder) ([]domain.RankedSet, error) {
	query := `SELECT c.setID, c.title, c.description, b.numCards
		FROM BiggestSet b
		INNER JOIN CardSet c ON b.setID = c.setID
		ORDER BY b.numCards ` + order.sql() + `, c.setID`
	return queryRanked(ctx, q, query, func(rs *domain.RankedSet, n int64) { rs.NumCards = n })
}

func queryRanked(ctx context.Context, q Querier, query string, setMetric func(*domain.RankedSet, int64)) ([]domain.RankedSet, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		customLog.Warnf("Storage: Error ranking sets: %v", err)
		return nil, fmt.Errorf("database error ranking sets: %w", err)
	}
	defer rows.Close()

	ranked := make([]domain.RankedSet, 0)
	for rows.Next() {
		var rs domain.RankedSet
		var description sql.NullString
		var metric int64
		if err := rows.Scan(&rs.SetID, &rs.Title, &description, &metric); err != nil {
			return nil, fmt.Errorf("failed processing ranked sets: %w", err)
		}
		rs.Description = stringPtr(description)
		setMetric(&rs, metric)
		ranked = append(ranked, rs)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading ranked sets: %w", err)
	}
	return ranked, nil
}

// SiteTotals counts the rows of every base table.
func SiteTotals(ctx context.Context, q Querier) (*domain.SiteTotals, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM User),
		(SELECT COUNT(*) FROM CardSet),
		(SELECT COUNT(*) FROM Flashcard),
		(SELECT COUNT(*) FROM Language),
		(SELECT COUNT(*) FROM Category)`
	var totals domain.SiteTotals
	err := q.QueryRowContext(ctx, query).Scan(&totals.UserCount, &totals.SetCount, &totals.CardCount,
		&totals.LanguageCount, &totals.CategoryCount)
	if err != nil {
		customLog.Warnf("Storage: Error counting site totals: %v", err)
		return nil, fmt.Errorf("database error counting totals: %w", err)
	}
	return &totals, nil
}
