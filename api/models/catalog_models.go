// api/models/catalog_models.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CardRequest is one flashcard in a create/edit payload.
type CardRequest struct {
	Word        string `json:"word" binding:"required"`
	Translation string `json:"translation" binding:"required"`
}

// SetRequest is the create/edit payload. Description is a pointer so an
// absent key can be told apart from an empty string.
type SetRequest struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Description *string       `json:"description" binding:"omitempty,max=1000"`
	Language    int64         `json:"language" binding:"required,min=1"`
	Category    int64         `json:"category" binding:"required,min=1"`
	Flashcards  []CardRequest `json:"flashcards" binding:"dive"`
}

// QuickSearchRequest matches set titles.
type QuickSearchRequest struct {
	Query string `json:"query"`
}

// AdvancedSearchRequest matches several fields at once; 0 disables the
// language or category filter.
type AdvancedSearchRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	Language    Selector `json:"language" binding:"min=0"`
	Category    Selector `json:"category" binding:"min=0"`
}

// Selector is a lookup id that clients may send as a number or a numeric
// string ("2"). An empty string means no filter.
type Selector int64

func (s *Selector) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = 0
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid selector %q: must be an integer", raw)
		}
		*s = Selector(n)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid selector %s: must be an integer", data)
	}
	*s = Selector(n)
	return nil
}
