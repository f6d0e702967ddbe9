// Package search builds and runs substring queries over card sets.
//
// Both modes inner-join Language and Category so results carry names, and
// match with LIKE '%' || ? || '%'. SQLite's LIKE is case-insensitive for
// ASCII. User input is not escaped: '%' and '_' keep their wildcard meaning.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
	"github.com/Annany2002/flashdeck-backend/internal/logger"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

const baseQuery = `SELECT ` + storage.SummaryColumns + `
	FROM CardSet s
	INNER JOIN Language l ON l.langID = s.language
	INNER JOIN Category c ON c.catID = s.category`

// AdvancedParams are the fields of a multi-field search. Empty strings match
// everything; a zero Language or Category disables that filter.
type AdvancedParams struct {
	Title       string
	Description string
	Creator     string
	Language    int64
	Category    int64
}

// Query is a conjunctive set of conditions over the joined set projection.
type Query struct {
	conditions []string
	args       []any
}

// Quick matches set titles against a substring.
func Quick(text string) Query {
	var q Query
	q.contains("s.title", text)
	return q
}

// Advanced matches title, description and creator as substrings and
// optionally pins language and category.
func Advanced(p AdvancedParams) Query {
	var q Query
	q.contains("s.title", p.Title)
	// NULL descriptions must still match the empty filter.
	q.contains("COALESCE(s.description, '')", p.Description)
	q.contains("s.creator", p.Creator)
	if p.Language != 0 {
		q.equals("l.langID", p.Language)
	}
	if p.Category != 0 {
		q.equals("c.catID", p.Category)
	}
	return q
}

func (q *Query) contains(column, term string) {
	q.conditions = append(q.conditions, column+" LIKE '%' || ? || '%'")
	q.args = append(q.args, term)
}

func (q *Query) equals(column string, value any) {
	q.conditions = append(q.conditions, column+" = ?")
	q.args = append(q.args, value)
}

// Build renders the statement and its positional arguments.
func (q Query) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(baseQuery)
	if len(q.conditions) > 0 {
		sb.WriteString("\n\tWHERE ")
		sb.WriteString(strings.Join(q.conditions, "\n\tAND "))
	}
	sb.WriteString("\n\tORDER BY s.setID")
	return sb.String(), q.args
}

// Run executes query and returns the matching set projections.
func Run(ctx context.Context, db storage.Querier, query Query) ([]domain.SetSummary, error) {
	sqlText, args := query.Build()
	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		customLog.Warnf("Search: query failed: %v", err)
		return nil, fmt.Errorf("database error searching sets: %w", err)
	}
	defer rows.Close()

	results, err := storage.ScanSetSummaries(rows)
	if err != nil {
		customLog.Warnf("Search: scanning results failed: %v", err)
		return nil, err
	}
	return results, nil
}
