// Package catalog holds the business rules of the flashcard catalog: set
// authoring, collections, views, accounts, browsing and search.
//
// Every multi-statement write runs inside storage.WithTx, so a failure part
// way through leaves no partial set behind.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/flashdeck-backend/internal/auth"
	"github.com/Annany2002/flashdeck-backend/internal/core"
	"github.com/Annany2002/flashdeck-backend/internal/domain"
	"github.com/Annany2002/flashdeck-backend/internal/logger"
	"github.com/Annany2002/flashdeck-backend/internal/search"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("not allowed to modify this set")

	customLog = logger.NewLogger()
)

// dashboardSuggestions caps the "other people's sets" list on the dashboard.
const dashboardSuggestions = 5

// Service implements catalog operations over a SQLite pool.
type Service struct {
	db         *sql.DB
	bcryptCost int
	now        func() time.Time
}

// NewService creates a Service. bcryptCost is passed to bcrypt when hashing passwords.
func NewService(db *sql.DB, bcryptCost int) *Service {
	return &Service{
		db:         db,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetInput is the payload of set creation and edit. A nil Description
// leaves the stored description untouched (NULL on create).
type SetInput struct {
	Title       string
	Description *string
	Language    int64
	Category    int64
	Cards       []domain.Card
}

// UserInput is the payload of signup.
type UserInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Birthday  string
	Password  string
	Avatar    int
}

// ProfileInput is the payload of a profile edit.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Birthday  string
	Password  string
	Avatar    int
}

// ListOptions pages set listings and orders ranked ones.
type ListOptions struct {
	Limit  int
	Offset int
	Order  storage.SortOrder
}

// Dashboard is a user's landing view.
type Dashboard struct {
	User        *domain.User      `json:"user"`
	Languages   []domain.Language `json:"languages"`
	MyCardSets  []domain.CardSet  `json:"myCardSets"`
	AllCardSets []domain.CardSet  `json:"allCardSets"`
}

// ExplorePage is a browse listing plus the per-language and per-category counts.
type ExplorePage struct {
	Title      string                 `json:"title"`
	Group      string                 `json:"group,omitempty"`
	Languages  []domain.LanguageCount `json:"languages"`
	Categories []domain.CategoryCount `json:"categories"`
	Sets       []domain.CardSet       `json:"sets,omitempty"`
	Featured   []domain.RankedSet     `json:"featured,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (in SetInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if in.Language < 1 {
		return invalid("language is required")
	}
	if in.Category < 1 {
		return invalid("category is required")
	}
	for i, card := range in.Cards {
		if strings.TrimSpace(card.Word) == "" || strings.TrimSpace(card.Translation) == "" {
			return invalid("flashcard %d needs both a word and a translation", i)
		}
	}
	return nil
}

// checkLookups verifies the language and category a set points at.
func checkLookups(ctx context.Context, q storage.Querier, language, category int64) error {
	if _, err := storage.FindLanguage(ctx, q, language); err != nil {
		return err
	}
	if _, err := storage.FindCategory(ctx, q, category); err != nil {
		return err
	}
	return nil
}

// authorize loads the set and checks actor may change it.
func authorize(ctx context.Context, q storage.Querier, actor string, setID int64) (*domain.CardSet, error) {
	set, err := storage.FindSetByID(ctx, q, setID)
	if err != nil {
		return nil, err
	}
	if set.Creator == actor {
		return set, nil
	}
	user, err := storage.FindUserByUsername(ctx, q, actor)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return set, nil
}

// CreateSet inserts a set, the creator's collection row and every card in a
// single transaction, and returns the new setID.
func (s *Service) CreateSet(ctx context.Context, creator string, in SetInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	var setID int64
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		exists, err := storage.UserExists(ctx, tx, creator)
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrUserNotFound
		}
		if err := checkLookups(ctx, tx, in.Language, in.Category); err != nil {
			return err
		}

		setID, err = storage.InsertSet(ctx, tx, &domain.CardSet{
			Title:       in.Title,
			Description: in.Description,
			Language:    in.Language,
			Category:    in.Category,
			Creator:     creator,
			LastUpdate:  s.now(),
		})
		if err != nil {
			return err
		}
		if err := storage.AddToCollection(ctx, tx, creator, setID); err != nil {
			return err
		}
		return storage.InsertCards(ctx, tx, setID, in.Cards)
	})
	if err != nil {
		customLog.Warnf("Catalog: CreateSet for %s failed: %v", creator, err)
		return 0, err
	}

	customLog.Printf("Catalog: %s created set %d with %d card(s)", creator, setID, len(in.Cards))
	return setID, nil
}

// EditSet rewrites a set's fields and replaces its whole card list.
func (s *Service) EditSet(ctx context.Context, actor string, setID int64, in SetInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := authorize(ctx, tx, actor, setID); err != nil {
			return err
		}
		if err := checkLookups(ctx, tx, in.Language, in.Category); err != nil {
			return err
		}

		if err := storage.UpdateSet(ctx, tx, &domain.CardSet{
			SetID:       setID,
			Title:       in.Title,
			Description: in.Description,
			Language:    in.Language,
			Category:    in.Category,
			LastUpdate:  s.now(),
		}); err != nil {
			return err
		}
		if _, err := storage.DeleteCardsForSet(ctx, tx, setID); err != nil {
			return err
		}
		return storage.InsertCards(ctx, tx, setID, in.Cards)
	})
	if err != nil {
		customLog.Warnf("Catalog: EditSet %d by %s failed: %v", setID, actor, err)
		return err
	}

	customLog.Printf("Catalog: %s edited set %d, now %d card(s)", actor, setID, len(in.Cards))
	return nil
}

// DeleteSet removes a set with its cards and collection rows. Deleting a
// set that does not exist succeeds.
func (s *Service) DeleteSet(ctx context.Context, actor string, setID int64) error {
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := authorize(ctx, tx, actor, setID); err != nil {
			if errors.Is(err, storage.ErrSetNotFound) {
				return nil
			}
			return err
		}
		if _, err := storage.DeleteCardsForSet(ctx, tx, setID); err != nil {
			return err
		}
		if err := storage.DeleteSet(ctx, tx, setID); err != nil {
			return err
		}
		return storage.DeleteCollectionsForSet(ctx, tx, setID)
	})
	if err != nil {
		customLog.Warnf("Catalog: DeleteSet %d by %s failed: %v", setID, actor, err)
		return err
	}
	return nil
}

// AddToCollection bookmarks setID for username.
func (s *Service) AddToCollection(ctx context.Context, username string, setID int64) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		exists, err := storage.UserExists(ctx, tx, username)
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrUserNotFound
		}
		if _, err := storage.FindSetByID(ctx, tx, setID); err != nil {
			return err
		}
		return storage.AddToCollection(ctx, tx, username, setID)
	})
}

// RemoveFromCollection drops the bookmark if present.
func (s *Service) RemoveFromCollection(ctx context.Context, username string, setID int64) error {
	return storage.RemoveFromCollection(ctx, s.db, username, setID)
}

// HasSet reports whether username has setID in their collection.
func (s *Service) HasSet(ctx context.Context, username string, setID int64) (bool, error) {
	return storage.HasInCollection(ctx, s.db, username, setID)
}

// ViewSet counts one view and returns the set's display projection,
// including that view.
func (s *Service) ViewSet(ctx context.Context, setID int64) (*domain.SetSummary, error) {
	var view *domain.SetSummary
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := storage.IncrementViewCount(ctx, tx, setID); err != nil {
			return err
		}
		var err error
		view, err = storage.FindSetView(ctx, tx, setID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetSet returns the raw set row.
func (s *Service) GetSet(ctx context.Context, setID int64) (*domain.CardSet, error) {
	return storage.FindSetByID(ctx, s.db, setID)
}

// GetFlashcards returns the cards of a set; unknown sets have none.
func (s *Service) GetFlashcards(ctx context.Context, setID int64) ([]domain.Flashcard, error) {
	return storage.ListCards(ctx, s.db, setID)
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, in UserInput) (*domain.User, error) {
	if !core.IsValidUsername(in.Username) {
		return nil, invalid("username must be 1-32 letters or digits")
	}
	if in.Avatar < 1 || in.Avatar > 6 {
		return nil, invalid("avatar must be between 1 and 6")
	}
	if in.Password == "" {
		return nil, invalid("password is required")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Birthday:     in.Birthday,
		PasswordHash: hash,
		IsAdmin:      false,
		Avatar:       in.Avatar,
		LastLogin:    now,
		RegisterDate: now,
	}
	if err := storage.CreateUser(ctx, s.db, user); err != nil {
		return nil, err
	}

	customLog.Printf("Catalog: registered user %s", in.Username)
	return user, nil
}

// Login returns the user when password matches, or ErrInvalidCredentials.
// Unknown usernames are reported the same way as wrong passwords.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := storage.FindUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, storage.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, storage.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return storage.FindUserByUsername(ctx, s.db, username)
}

// UpdateProfile replaces a user's editable fields, re-hashing the password.
func (s *Service) UpdateProfile(ctx context.Context, username string, in ProfileInput) error {
	if in.Avatar < 1 || in.Avatar > 6 {
		return invalid("avatar must be between 1 and 6")
	}
	if in.Password == "" {
		return invalid("password is required")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return err
	}

	return storage.UpdateUserProfile(ctx, s.db, &domain.User{
		Username:     username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Birthday:     in.Birthday,
		PasswordHash: hash,
		Avatar:       in.Avatar,
	})
}

// Dashboard records the visit as the user's last login and gathers their
// collection and a few sets by other creators.
func (s *Service) Dashboard(ctx context.Context, username string) (*Dashboard, error) {
	if err := storage.TouchLastLogin(ctx, s.db, username, s.now()); err != nil {
		return nil, err
	}

	user, err := storage.FindUserByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	languages, err := storage.ListLanguages(ctx, s.db)
	if err != nil {
		return nil, err
	}
	mine, err := storage.ListCollectedSets(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	others, err := storage.ListSets(ctx, s.db, storage.SetFilter{ExcludeCreator: username, Limit: dashboardSuggestions})
	if err != nil {
		return nil, err
	}

	return &Dashboard{User: user, Languages: languages, MyCardSets: mine, AllCardSets: others}, nil
}

func (s *Service) counts(ctx context.Context) ([]domain.LanguageCount, []domain.CategoryCount, error) {
	languages, err := storage.LanguageSetCounts(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	categories, err := storage.CategorySetCounts(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	return languages, categories, nil
}

// Explore lists all sets with the language and category counts.
func (s *Service) Explore(ctx context.Context, opts ListOptions) (*ExplorePage, error) {
	languages, categories, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := storage.ListSets(ctx, s.db, storage.SetFilter{Limit: opts.Limit, Offset: opts.Offset})
	if err != nil {
		return nil, err
	}
	return &ExplorePage{
		Title:      "Browsing all sets",
		Languages:  languages,
		Categories: categories,
		Sets:       sets,
	}, nil
}

// ExploreGroup lists the sets of one language or category, or a featured ranking.
func (s *Service) ExploreGroup(ctx context.Context, sel core.ExploreSelector, opts ListOptions) (*ExplorePage, error) {
	languages, categories, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}
	page := &ExplorePage{Group: string(sel.Group), Languages: languages, Categories: categories}

	switch sel.Group {
	case core.GroupLanguage:
		lang, err := storage.FindLanguage(ctx, s.db, sel.ID)
		if err != nil {
			return nil, err
		}
		page.Title = fmt.Sprintf("Browsing %q", lang.Name)
		page.Sets, err = storage.ListSets(ctx, s.db, storage.SetFilter{LanguageID: sel.ID, Limit: opts.Limit, Offset: opts.Offset})
		if err != nil {
			return nil, err
		}
	case core.GroupCategory:
		cat, err := storage.FindCategory(ctx, s.db, sel.ID)
		if err != nil {
			return nil, err
		}
		page.Title = fmt.Sprintf("Browsing %q", cat.Name)
		page.Sets, err = storage.ListSets(ctx, s.db, storage.SetFilter{CategoryID: sel.ID, Limit: opts.Limit, Offset: opts.Offset})
		if err != nil {
			return nil, err
		}
	case core.GroupFeatured:
		if sel.Featured == core.FeaturedPopular {
			page.Title = fmt.Sprintf("Browsing %q", "most collected sets")
			page.Featured, err = storage.MostCollectedSets(ctx, s.db, opts.Order)
		} else {
			page.Title = fmt.Sprintf("Browsing %q", "biggest sets")
			page.Featured, err = storage.BiggestSets(ctx, s.db, opts.Order)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, invalid("unknown explore group %q", sel.Group)
	}
	return page, nil
}

// QuickSearch matches set titles.
func (s *Service) QuickSearch(ctx context.Context, text string) ([]domain.SetSummary, error) {
	return search.Run(ctx, s.db, search.Quick(text))
}

// AdvancedSearch matches title, description and creator, optionally pinned
// to a language and category.
func (s *Service) AdvancedSearch(ctx context.Context, p search.AdvancedParams) ([]domain.SetSummary, error) {
	if p.Language < 0 || p.Category < 0 {
		return nil, invalid("language and category selectors must be 0 or a valid id")
	}
	return search.Run(ctx, s.db, search.Advanced(p))
}

// Languages lists the language lookup table.
func (s *Service) Languages(ctx context.Context) ([]domain.Language, error) {
	return storage.ListLanguages(ctx, s.db)
}

// Categories lists the category lookup table.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return storage.ListCategories(ctx, s.db)
}

// Stats counts users, sets, cards, languages and categories.
func (s *Service) Stats(ctx context.Context) (*domain.SiteTotals, error) {
	return storage.SiteTotals(ctx, s.db)
}
