// api/handlers/catalog_integration_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/flashdeck-backend/api"
	"github.com/Annany2002/flashdeck-backend/api/middleware"
	"github.com/Annany2002/flashdeck-backend/api/models"
	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/auth"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

const testSecret = "test_secret_key_for_integration_tests_1234567890"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:         "0",
		JWTSecret:          testSecret,
		JWTExpiration:      5 * time.Minute,
		DbDir:              t.TempDir(),
		DbFile:             "test_catalog.db",
		CORSAllowedOrigins: []string{"*"},
		LoginRateLimit:     100,
		LoginRateWindow:    time.Minute,
		BcryptCost:         bcrypt.MinCost,
	}
}

// setupTestServer creates a test server instance backed by a fresh database.
func setupTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.ConnectDB(cfg)
	require.NoError(t, err)

	server := httptest.NewServer(api.SetupRouter(db, cfg))
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})
	return server
}

// call sends a JSON request and decodes a JSON object response.
func call(t *testing.T, method, target, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return res.StatusCode, decoded
}

func signupBody(username string) models.SignupRequest {
	return models.SignupRequest{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Birthday:  "1994-02-03",
		Password:  "StrongPassword123!",
		Avatar:    4,
	}
}

func login(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()

	status, body := call(t, http.MethodPost, server.URL+"/submit_login", "",
		models.LoginRequest{Username: username, Password: "StrongPassword123!"})
	require.Equal(t, http.StatusOK, status, "login body: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAccountEndpoints(t *testing.T) {
	server := setupTestServer(t, testConfig(t))

	t.Run("Signup Success", func(t *testing.T) {
		status, body := call(t, http.MethodPost, server.URL+"/submit_signup", "", signupBody("sumin"))
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "User registered successfully", body["message"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "sumin", user["username"])
		assert.NotContains(t, user, "password")
	})

	t.Run("Signup Conflict (Duplicate Username)", func(t *testing.T) {
		status, _ := call(t, http.MethodPost, server.URL+"/submit_signup", "", signupBody("sumin"))
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("Signup Bad Request", func(t *testing.T) {
		bad := signupBody("has space")
		status, _ := call(t, http.MethodPost, server.URL+"/submit_signup", "", bad)
		assert.Equal(t, http.StatusBadRequest, status)

		bad = signupBody("shortpass")
		bad.Password = "short"
		status, _ = call(t, http.MethodPost, server.URL+"/submit_signup", "", bad)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Login Success", func(t *testing.T) {
		status, body := call(t, http.MethodPost, server.URL+"/submit_login", "",
			models.LoginRequest{Username: "sumin", Password: "StrongPassword123!"})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Logged in successfully", body["message"])
		assert.Equal(t, "/user/sumin", body["redirect"])

		username, err := auth.ValidateJWT(body["token"].(string), testSecret)
		require.NoError(t, err)
		assert.Equal(t, "sumin", username)
	})

	t.Run("Login Unauthorized", func(t *testing.T) {
		status, _ := call(t, http.MethodPost, server.URL+"/submit_login", "",
			models.LoginRequest{Username: "sumin", Password: "IncorrectPassword"})
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _ = call(t, http.MethodPost, server.URL+"/submit_login", "",
			models.LoginRequest{Username: "nobody", Password: "anyPassword"})
		assert.Equal(t, http.StatusUnauthorized, status, "unknown users look like bad passwords")
	})

	t.Run("Form Login Redirects", func(t *testing.T) {
		client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}}

		res, err := client.PostForm(server.URL+"/submit_login", url.Values{"username": {"sumin"}, "password": {"StrongPassword123!"}})
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/user/sumin", res.Header.Get("Location"))
		require.Len(t, res.Cookies(), 1)
		cookie := res.Cookies()[0]
		assert.Equal(t, middleware.TokenCookie, cookie.Name)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.True(t, cookie.HttpOnly)

		res, err = client.PostForm(server.URL+"/submit_login", url.Values{"username": {"sumin"}, "password": {"nope"}})
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/?banner=login_failure", res.Header.Get("Location"))
	})

	t.Run("Get And Edit Profile", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/getUser/sumin", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "sumin@example.com", body["user"].(map[string]any)["email"])

		status, _ = call(t, http.MethodGet, server.URL+"/getUser/ghost", "", nil)
		assert.Equal(t, http.StatusNotFound, status)

		edit := models.EditProfileRequest{
			FirstName: "Su", LastName: "Min", Email: "su@example.com", Password: "StrongPassword123!", Avatar: 6,
		}
		status, _ = call(t, http.MethodPost, server.URL+"/editProfile/sumin", "", edit)
		assert.Equal(t, http.StatusUnauthorized, status)

		token := login(t, server, "sumin")
		status, _ = call(t, http.MethodPost, server.URL+"/editProfile/sumin", token, edit)
		assert.Equal(t, http.StatusOK, status)

		_, body = call(t, http.MethodGet, server.URL+"/getUser/sumin", "", nil)
		assert.Equal(t, "su@example.com", body["user"].(map[string]any)["email"])
	})
}

func TestCatalogEndpoints(t *testing.T) {
	server := setupTestServer(t, testConfig(t))

	for _, name := range []string{"sumin", "tim"} {
		status, _ := call(t, http.MethodPost, server.URL+"/submit_signup", "", signupBody(name))
		require.Equal(t, http.StatusCreated, status)
	}
	suminToken := login(t, server, "sumin")
	timToken := login(t, server, "tim")

	desc := "first words"
	basics := models.SetRequest{
		Title:       "Basics",
		Description: &desc,
		Language:    1,
		Category:    1,
		Flashcards: []models.CardRequest{
			{Word: "hola", Translation: "hello"},
			{Word: "adiós", Translation: "goodbye"},
			{Word: "gracias", Translation: "thank you"},
		},
	}

	status, _ := call(t, http.MethodPost, server.URL+"/create_set/sumin", "", basics)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, http.MethodPost, server.URL+"/create_set/sumin", timToken, basics)
	require.Equal(t, http.StatusForbidden, status, "token user must match the path user")

	status, body := call(t, http.MethodPost, server.URL+"/create_set/sumin", suminToken, basics)
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	setID := strconv.FormatInt(int64(body["setID"].(float64)), 10)

	t.Run("Read Set", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/set/"+setID, "", nil)
		require.Equal(t, http.StatusOK, status)
		result := body["result"].(map[string]any)
		assert.Equal(t, "Basics", result["title"])
		assert.Equal(t, "sumin", result["creator"])
		assert.EqualValues(t, 0, result["viewCount"])

		status, body = call(t, http.MethodGet, server.URL+"/flashcards/"+setID, "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["flashcards"], 3)

		status, body = call(t, http.MethodGet, server.URL+"/flashcards/999", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["flashcards"])

		status, _ = call(t, http.MethodGet, server.URL+"/set/999", "", nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = call(t, http.MethodGet, server.URL+"/set/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("View Set", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/user/tim/view/"+setID, "", nil)
		require.Equal(t, http.StatusOK, status)
		result := body["result"].(map[string]any)
		assert.EqualValues(t, 1, result["viewCount"])
		assert.Equal(t, "Spanish", result["language"])
		assert.Len(t, body["flashcards"], 3)
	})

	t.Run("Collections", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/user/sumin/hasSet/"+setID, "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["hasSet"])

		status, _ = call(t, http.MethodPost, server.URL+"/user/tim/addSet/"+setID, timToken, nil)
		assert.Equal(t, http.StatusOK, status)
		status, _ = call(t, http.MethodPost, server.URL+"/user/tim/addSet/"+setID, timToken, nil)
		assert.Equal(t, http.StatusConflict, status)
		status, _ = call(t, http.MethodPost, server.URL+"/user/tim/addSet/999", timToken, nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = call(t, http.MethodPost, server.URL+"/user/tim/removeSet/"+setID, timToken, nil)
		assert.Equal(t, http.StatusOK, status)
		_, body = call(t, http.MethodGet, server.URL+"/user/tim/hasSet/"+setID, "", nil)
		assert.Equal(t, false, body["hasSet"])
	})

	t.Run("Search", func(t *testing.T) {
		status, body := call(t, http.MethodPost, server.URL+"/quickSearch/tim", "", models.QuickSearchRequest{Query: "bas"})
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["results"], 1)

		status, body = call(t, http.MethodPost, server.URL+"/advancedSearch/tim", "", models.AdvancedSearchRequest{Creator: "sumin", Language: 2})
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["results"])

		status, body = call(t, http.MethodPost, server.URL+"/advancedSearch/tim", "", map[string]string{"creator": "sumin", "language": "1", "category": "0"})
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["results"], 1)
	})

	t.Run("Explore", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/user/tim/explore", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["sets"], 1)
		assert.Len(t, body["languages"], 8)

		status, body = call(t, http.MethodGet, server.URL+"/user/tim/explore/language/1", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, `Browsing "Spanish"`, body["title"])

		status, body = call(t, http.MethodGet, server.URL+"/user/tim/explore/featured/biggest?order=desc", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["featured"], 1)

		status, _ = call(t, http.MethodGet, server.URL+"/user/tim/explore/creator/1", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		status, _ = call(t, http.MethodGet, server.URL+"/user/tim/explore/language/99", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Dashboard", func(t *testing.T) {
		status, body := call(t, http.MethodGet, server.URL+"/user/sumin", suminToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["myCardSets"], 1)
		assert.Empty(t, body["allCardSets"])
	})

	t.Run("Edit Set", func(t *testing.T) {
		shorter := models.SetRequest{
			Title:      "Basics v2",
			Language:   1,
			Category:   1,
			Flashcards: []models.CardRequest{{Word: "sí", Translation: "yes"}},
		}
		status, _ := call(t, http.MethodPost, server.URL+"/edit_set/"+setID, timToken, shorter)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = call(t, http.MethodPost, server.URL+"/edit_set/"+setID, suminToken, shorter)
		require.Equal(t, http.StatusOK, status)

		_, body := call(t, http.MethodGet, server.URL+"/flashcards/"+setID, "", nil)
		assert.Len(t, body["flashcards"], 1)

		shorter.Language = 99
		status, _ = call(t, http.MethodPost, server.URL+"/edit_set/"+setID, suminToken, shorter)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Delete Set", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/user/sumin/delete/"+setID, nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: suminToken})
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "delete needs the Authorization header")

		status, _ := call(t, http.MethodGet, server.URL+"/user/tim/delete/"+setID, timToken, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = call(t, http.MethodGet, server.URL+"/user/sumin/delete/"+setID, suminToken, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = call(t, http.MethodGet, server.URL+"/user/sumin/delete/"+setID, suminToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = call(t, http.MethodGet, server.URL+"/set/"+setID, "", nil)
		assert.Equal(t, http.StatusNotFound, status)

		_, body := call(t, http.MethodGet, server.URL+"/stats", "", nil)
		assert.EqualValues(t, 0, body["setcount"])
		assert.EqualValues(t, 0, body["cardcount"])
		assert.EqualValues(t, 2, body["usercount"])
	})
}

func TestPingAndRequestID(t *testing.T) {
	server := setupTestServer(t, testConfig(t))

	res, err := http.Get(server.URL + "/ping")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestLoginRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.LoginRateLimit = 2
	server := setupTestServer(t, cfg)

	var last int
	for i := 0; i < 3; i++ {
		res, err := http.Post(server.URL+"/submit_login", "application/json",
			strings.NewReader(`{"username":"nobody","password":"whatever1"}`))
		require.NoError(t, err)
		res.Body.Close()
		last = res.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
