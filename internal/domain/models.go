// internal/domain/models.go
package domain

import "time"

// User defines the structure for user data in the DB
type User struct {
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Birthday     string    `json:"birthday"` // YYYY-MM-DD
	PasswordHash string    `json:"-"`        // Exclude password hash from JSON responses
	IsAdmin      bool      `json:"isAdmin"`
	Avatar       int       `json:"avatar"`
	LastLogin    time.Time `json:"lastLogin"`
	RegisterDate time.Time `json:"registerDate"`
}

// Language is a lookup row a set is written in.
type Language struct {
	LangID int64  `json:"langID"`
	Name   string `json:"name"`
}

// Category is a lookup row grouping sets by subject.
type Category struct {
	CatID int64  `json:"catID"`
	Name  string `json:"name"`
}

// CardSet mirrors the CardSet table; Language and Category hold foreign keys.
type CardSet struct {
	SetID       int64     `json:"setID"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Language    int64     `json:"language"`
	Category    int64     `json:"category"`
	Creator     string    `json:"creator"`
	LastUpdate  time.Time `json:"lastUpdate"`
	ViewCount   int64     `json:"viewCount"`
}

// SetSummary is the display projection of a set, with language and category
// resolved to their names.
type SetSummary struct {
	SetID       int64     `json:"setID"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Language    string    `json:"language"`
	Category    string    `json:"category"`
	Creator     string    `json:"creator"`
	LastUpdate  time.Time `json:"lastUpdate"`
	ViewCount   int64     `json:"viewCount"`
}

// Flashcard is a single word/translation pair belonging to a set.
type Flashcard struct {
	ID          int64  `json:"id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	SetID       int64  `json:"setID"`
}

// Card is a flashcard before it is attached to a set.
type Card struct {
	Word        string
	Translation string
}

// LanguageCount is a row of the sets-per-language view.
type LanguageCount struct {
	LangID    int64  `json:"langID"`
	Name      string `json:"name"`
	LangCount int64  `json:"langCount"`
}

// CategoryCount is a row of the sets-per-category view.
type CategoryCount struct {
	CatID    int64  `json:"catID"`
	Name     string `json:"name"`
	CatCount int64  `json:"catCount"`
}

// RankedSet is a set with the metric it was ranked by (collector or card count).
type RankedSet struct {
	SetID          int64   `json:"setID"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	NumCollections int64   `json:"numCollections,omitempty"`
	NumCards       int64   `json:"numCards,omitempty"`
}

// SiteTotals holds row counts across the base tables.
type SiteTotals struct {
	UserCount     int64 `json:"usercount"`
	SetCount      int64 `json:"setcount"`
	CardCount     int64 `json:"cardcount"`
	LanguageCount int64 `json:"langcount"`
	CategoryCount int64 `json:"catcount"`
}
