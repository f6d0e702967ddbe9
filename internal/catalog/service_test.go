package catalog

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/core"
	"github.com/Annany2002/flashdeck-backend/internal/domain"
	"github.com/Annany2002/flashdeck-backend/internal/search"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, err := storage.ConnectDB(&config.Config{DbDir: t.TempDir(), DbFile: "catalog_test.db"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, bcrypt.MinCost), db
}

func signup(t *testing.T, svc *Service, username string) {
	t.Helper()

	_, err := svc.Signup(context.Background(), UserInput{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Birthday:  "1995-05-05",
		Password:  "password123",
		Avatar:    2,
	})
	require.NoError(t, err)
}

func basicsInput() SetInput {
	desc := "first words"
	return SetInput{
		Title:       "Basics",
		Description: &desc,
		Language:    1,
		Category:    1,
		Cards: []domain.Card{
			{Word: "hola", Translation: "hello"},
			{Word: "adiós", Translation: "goodbye"},
			{Word: "gracias", Translation: "thank you"},
		},
	}
}

func TestCreateSet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)

	set, err := svc.GetSet(ctx, setID)
	require.NoError(t, err)
	assert.Equal(t, "Basics", set.Title)
	assert.Equal(t, "sumin", set.Creator)
	assert.Equal(t, int64(0), set.ViewCount)

	cards, err := svc.GetFlashcards(ctx, setID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "hola", cards[0].Word)
	assert.Equal(t, "thank you", cards[2].Translation)

	has, err := svc.HasSet(ctx, "sumin", setID)
	require.NoError(t, err)
	assert.True(t, has, "creator should have the new set in their collection")

	results, err := svc.QuickSearch(ctx, "bas")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Spanish", results[0].Language)
	assert.Equal(t, "Basics", results[0].Category)

	t.Run("unknown language rolls back", func(t *testing.T) {
		in := basicsInput()
		in.Title = "Broken"
		in.Language = 99
		_, err := svc.CreateSet(ctx, "sumin", in)
		assert.ErrorIs(t, err, storage.ErrLanguageNotFound)

		results, err := svc.QuickSearch(ctx, "broken")
		require.NoError(t, err)
		assert.Empty(t, results)

		totals, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.SetCount)
		assert.Equal(t, int64(3), totals.CardCount)
	})

	t.Run("invalid input", func(t *testing.T) {
		in := basicsInput()
		in.Title = "  "
		_, err := svc.CreateSet(ctx, "sumin", in)
		assert.ErrorIs(t, err, ErrInvalidInput)

		in = basicsInput()
		in.Cards = append(in.Cards, domain.Card{Word: "solo"})
		_, err = svc.CreateSet(ctx, "sumin", in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown creator", func(t *testing.T) {
		_, err := svc.CreateSet(ctx, "ghost", basicsInput())
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestEditSet(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")
	signup(t, svc, "tim")
	signup(t, svc, "boss")
	_, err := db.Exec(`UPDATE User SET isAdmin = 1 WHERE username = 'boss'`)
	require.NoError(t, err)

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)

	t.Run("shorter card list replaces the old one", func(t *testing.T) {
		in := SetInput{
			Title:    "Basics v2",
			Language: 2,
			Category: 3,
			Cards:    []domain.Card{{Word: "bonjour", Translation: "hello"}},
		}
		require.NoError(t, svc.EditSet(ctx, "sumin", setID, in))

		set, err := svc.GetSet(ctx, setID)
		require.NoError(t, err)
		assert.Equal(t, "Basics v2", set.Title)
		assert.Equal(t, int64(2), set.Language)
		require.NotNil(t, set.Description, "nil description keeps the stored one")
		assert.Equal(t, "first words", *set.Description)

		cards, err := svc.GetFlashcards(ctx, setID)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "bonjour", cards[0].Word)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		err := svc.EditSet(ctx, "tim", setID, basicsInput())
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, svc.DeleteSet(ctx, "tim", setID), ErrForbidden)
	})

	t.Run("admins may edit", func(t *testing.T) {
		require.NoError(t, svc.EditSet(ctx, "boss", setID, basicsInput()))

		cards, err := svc.GetFlashcards(ctx, setID)
		require.NoError(t, err)
		assert.Len(t, cards, 3)
	})

	t.Run("bad category rolls back", func(t *testing.T) {
		in := basicsInput()
		in.Title = "Should not stick"
		in.Category = 42
		assert.ErrorIs(t, svc.EditSet(ctx, "sumin", setID, in), storage.ErrCategoryNotFound)

		set, err := svc.GetSet(ctx, setID)
		require.NoError(t, err)
		assert.Equal(t, "Basics", set.Title)
	})

	t.Run("missing set", func(t *testing.T) {
		assert.ErrorIs(t, svc.EditSet(ctx, "sumin", 999, basicsInput()), storage.ErrSetNotFound)
	})
}

func TestDeleteSet(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")
	signup(t, svc, "tim")

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)
	require.NoError(t, svc.AddToCollection(ctx, "tim", setID))

	require.NoError(t, svc.DeleteSet(ctx, "sumin", setID))

	_, err = svc.GetSet(ctx, setID)
	assert.ErrorIs(t, err, storage.ErrSetNotFound)

	var orphans int
	require.NoError(t, db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM Flashcard WHERE setID = ?) +
		(SELECT COUNT(*) FROM UserCollection WHERE setID = ?)`, setID, setID).Scan(&orphans))
	assert.Zero(t, orphans)

	assert.NoError(t, svc.DeleteSet(ctx, "sumin", setID), "second delete is a no-op")
}

func TestCollections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")
	signup(t, svc, "tim")

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)

	require.NoError(t, svc.AddToCollection(ctx, "tim", setID))
	assert.ErrorIs(t, svc.AddToCollection(ctx, "tim", setID), storage.ErrAlreadyCollected)
	assert.ErrorIs(t, svc.AddToCollection(ctx, "tim", 999), storage.ErrSetNotFound)
	assert.ErrorIs(t, svc.AddToCollection(ctx, "ghost", setID), storage.ErrUserNotFound)

	require.NoError(t, svc.RemoveFromCollection(ctx, "tim", setID))
	require.NoError(t, svc.RemoveFromCollection(ctx, "tim", setID))

	has, err := svc.HasSet(ctx, "tim", setID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestViewSetCountsConcurrentViews(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)

	view, err := svc.ViewSet(ctx, setID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ViewCount)
	assert.Equal(t, "Spanish", view.Language)

	const viewers = 20
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ViewSet(ctx, setID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	set, err := svc.GetSet(ctx, setID)
	require.NoError(t, err)
	assert.Equal(t, int64(viewers+1), set.ViewCount)

	_, err = svc.ViewSet(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrSetNotFound)
}

func TestAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Signup(ctx, UserInput{Username: "sumin", Password: "password123", Avatar: 1})
		assert.ErrorIs(t, err, storage.ErrUsernameExists)
	})

	t.Run("invalid signup", func(t *testing.T) {
		_, err := svc.Signup(ctx, UserInput{Username: "bad name", Password: "password123", Avatar: 1})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Signup(ctx, UserInput{Username: "okname", Password: "password123", Avatar: 9})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("login", func(t *testing.T) {
		user, err := svc.Login(ctx, "sumin", "password123")
		require.NoError(t, err)
		assert.Equal(t, "sumin", user.Username)

		_, err = svc.Login(ctx, "sumin", "wrong-password")
		assert.ErrorIs(t, err, storage.ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, storage.ErrInvalidCredentials)
	})

	t.Run("update profile", func(t *testing.T) {
		err := svc.UpdateProfile(ctx, "sumin", ProfileInput{
			FirstName: "Su", LastName: "Min", Email: "new@example.com", Password: "newpassword", Avatar: 5,
		})
		require.NoError(t, err)

		user, err := svc.GetUser(ctx, "sumin")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, 5, user.Avatar)

		_, err = svc.Login(ctx, "sumin", "newpassword")
		assert.NoError(t, err)

		err = svc.UpdateProfile(ctx, "ghost", ProfileInput{Password: "x", Avatar: 1})
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestDashboardAndExplore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")
	signup(t, svc, "tim")

	mine, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)

	french := SetInput{Title: "Voyage", Language: 2, Category: 2, Cards: []domain.Card{{Word: "gare", Translation: "station"}}}
	timSet, err := svc.CreateSet(ctx, "tim", french)
	require.NoError(t, err)
	require.NoError(t, svc.AddToCollection(ctx, "sumin", timSet))

	t.Run("dashboard", func(t *testing.T) {
		dash, err := svc.Dashboard(ctx, "sumin")
		require.NoError(t, err)
		assert.Equal(t, "sumin", dash.User.Username)
		assert.NotEmpty(t, dash.Languages)
		assert.Len(t, dash.MyCardSets, 2)
		require.Len(t, dash.AllCardSets, 1)
		assert.Equal(t, timSet, dash.AllCardSets[0].SetID)

		_, err = svc.Dashboard(ctx, "ghost")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("explore all", func(t *testing.T) {
		page, err := svc.Explore(ctx, ListOptions{Order: storage.Ascending})
		require.NoError(t, err)
		assert.Len(t, page.Sets, 2)
		assert.Equal(t, "Spanish", page.Languages[0].Name)
		assert.Equal(t, int64(1), page.Languages[0].LangCount)
	})

	t.Run("explore language", func(t *testing.T) {
		page, err := svc.ExploreGroup(ctx, core.ExploreSelector{Group: core.GroupLanguage, ID: 2}, ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, `Browsing "French"`, page.Title)
		require.Len(t, page.Sets, 1)
		assert.Equal(t, timSet, page.Sets[0].SetID)

		_, err = svc.ExploreGroup(ctx, core.ExploreSelector{Group: core.GroupCategory, ID: 77}, ListOptions{})
		assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
	})

	t.Run("featured", func(t *testing.T) {
		sel := core.ExploreSelector{Group: core.GroupFeatured, Featured: core.FeaturedBiggest}
		page, err := svc.ExploreGroup(ctx, sel, ListOptions{Order: storage.Descending})
		require.NoError(t, err)
		require.Len(t, page.Featured, 2)
		assert.Equal(t, mine, page.Featured[0].SetID)
		assert.Equal(t, int64(3), page.Featured[0].NumCards)

		sel.Featured = core.FeaturedPopular
		page, err = svc.ExploreGroup(ctx, sel, ListOptions{Order: storage.Descending})
		require.NoError(t, err)
		require.Len(t, page.Featured, 2)
		assert.Equal(t, timSet, page.Featured[0].SetID)
		assert.Equal(t, int64(2), page.Featured[0].NumCollections)
	})

	t.Run("advanced search", func(t *testing.T) {
		results, err := svc.AdvancedSearch(ctx, search.AdvancedParams{Creator: "tim"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Voyage", results[0].Title)

		_, err = svc.AdvancedSearch(ctx, search.AdvancedParams{Language: -1})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// failCardInserts makes any flashcard with the given word abort its insert.
func failCardInserts(t *testing.T, db *sql.DB, word string) {
	t.Helper()

	_, err := db.Exec(`CREATE TRIGGER fail_card_insert BEFORE INSERT ON Flashcard
		WHEN NEW.word = '` + word + `'
		BEGIN SELECT RAISE(ABORT, 'card rejected'); END`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec(`DROP TRIGGER IF EXISTS fail_card_insert`) })
}

func TestWritesRollBackWhenCardInsertFails(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "sumin")

	setID, err := svc.CreateSet(ctx, "sumin", basicsInput())
	require.NoError(t, err)
	failCardInserts(t, db, "broken")

	t.Run("edit keeps the old cards", func(t *testing.T) {
		in := SetInput{
			Title:    "Half edited",
			Language: 2,
			Category: 2,
			Cards: []domain.Card{
				{Word: "bonjour", Translation: "hello"},
				{Word: "broken", Translation: "nope"},
			},
		}
		err := svc.EditSet(ctx, "sumin", setID, in)
		assert.ErrorIs(t, err, storage.ErrConstraintViolation)

		set, err := svc.GetSet(ctx, setID)
		require.NoError(t, err)
		assert.Equal(t, "Basics", set.Title)
		assert.Equal(t, int64(1), set.Language)

		cards, err := svc.GetFlashcards(ctx, setID)
		require.NoError(t, err)
		require.Len(t, cards, 3)
		assert.Equal(t, "hola", cards[0].Word)
	})

	t.Run("create leaves nothing behind", func(t *testing.T) {
		in := basicsInput()
		in.Title = "Half created"
		in.Cards = append(in.Cards, domain.Card{Word: "broken", Translation: "nope"})

		_, err := svc.CreateSet(ctx, "sumin", in)
		assert.ErrorIs(t, err, storage.ErrConstraintViolation)

		totals, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), totals.SetCount)
		assert.Equal(t, int64(3), totals.CardCount)

		var collected int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM UserCollection WHERE username = 'sumin'`).Scan(&collected))
		assert.Equal(t, 1, collected)

		results, err := svc.QuickSearch(ctx, "half")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
