// internal/storage/card_repo.go
package storage

import (
	"context"
	"fmt"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

// InsertCards attaches every card to setID, in order.
func InsertCards(ctx context.Context, q Querier, setID int64, cards []domain.Card) error {
	insertSQL := `INSERT INTO Flashcard (word, translation, setID) VALUES (?, ?, ?)`
	for i, card := range cards {
		if _, err := q.ExecContext(ctx, insertSQL, card.Word, card.Translation, setID); err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("%w: card %d: %v", ErrConstraintViolation, i, err)
			}
			customLog.Warnf("Storage: Failed to insert card %d for set %d: %v", i, setID, err)
			return fmt.Errorf("database error inserting flashcard: %w", err)
		}
	}
	return nil
}

// DeleteCardsForSet removes all cards of a set and returns how many went.
func DeleteCardsForSet(ctx context.Context, q Querier, setID int64) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM Flashcard WHERE setID = ?`, setID)
	if err != nil {
		customLog.Warnf("Storage: Error deleting cards of set %d: %v", setID, err)
		return 0, fmt.Errorf("database error deleting flashcards: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed confirming flashcard deletion: %w", err)
	}
	return n, nil
}

// ListCards returns the cards of a set in insertion order. A missing set yields an empty list.
func ListCards(ctx context.Context, q Querier, setID int64) ([]domain.Flashcard, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, word, translation, setID FROM Flashcard WHERE setID = ? ORDER BY id`, setID)
	if err != nil {
		customLog.Warnf("Storage: Error listing cards of set %d: %v", setID, err)
		return nil, fmt.Errorf("database error listing flashcards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.Flashcard, 0)
	for rows.Next() {
		var card domain.Flashcard
		if err := rows.Scan(&card.ID, &card.Word, &card.Translation, &card.SetID); err != nil {
			customLog.Warnf("Storage: Error scanning card of set %d: %v", setID, err)
			return nil, fmt.Errorf("failed processing flashcards: %w", err)
		}
		cards = append(cards, card)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading flashcards: %w", err)
	}
	return cards, nil
}
