// api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Annany2002/flashdeck-backend/api/middleware"
	"github.com/Annany2002/flashdeck-backend/api/models"
	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/auth"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
)

var errInvalidUsername = errors.New("invalid username: must be 1-32 letters or digits")

// Form logins land here when they fail.
const loginFailureRedirect = "/?banner=login_failure"

// UserHandler holds dependencies for account handlers.
type UserHandler struct {
	Svc *catalog.Service
	Cfg *config.Config
}

// NewUserHandler creates a new UserHandler with dependencies.
func NewUserHandler(svc *catalog.Service, cfg *config.Config) *UserHandler {
	return &UserHandler{Svc: svc, Cfg: cfg}
}

// Signup handles user registration requests.
func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Signup binding error: %v", err)
		badRequest(c, err)
		return
	}

	user, err := h.Svc.Signup(c.Request.Context(), catalog.UserInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Birthday:  req.Birthday,
		Password:  req.Password,
		Avatar:    req.Avatar,
	})
	if err != nil {
		customLog.Warnf("Failed to create user %s: %v", req.Username, err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

// isFormPost reports whether the request came from an HTML form.
func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == binding.MIMEPOSTForm || ct == binding.MIMEMultipartPOSTForm
}

// Login authenticates a user. JSON clients get a token back; form posts are
// redirected to the dashboard with the token in a cookie, or back to the
// landing page on failure.
func (h *UserHandler) Login(c *gin.Context) {
	form := isFormPost(c)

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		customLog.Warnf("Login binding error: %v", err)
		if form {
			c.Redirect(http.StatusSeeOther, loginFailureRedirect)
			return
		}
		badRequest(c, err)
		return
	}

	user, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		customLog.Warnf("Login failed for %s: %v", req.Username, err)
		if form {
			c.Redirect(http.StatusSeeOther, loginFailureRedirect)
			return
		}
		_ = c.Error(err)
		return
	}

	tokenString, err := auth.GenerateJWT(user.Username, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		customLog.Warnf("Failed to generate JWT for user %s: %v", user.Username, err)
		_ = c.Error(err)
		return
	}

	redirect := "/user/" + url.PathEscape(user.Username)
	if form {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(middleware.TokenCookie, tokenString, int(h.Cfg.JWTExpiration.Seconds()), "/", "", false, true)
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Message:  "Logged in successfully",
		User:     *user,
		Token:    tokenString,
		Redirect: redirect,
	})
}

// GetUser returns one user's public profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	username, ok := pathUsername(c)
	if !ok {
		return
	}

	user, err := h.Svc.GetUser(c.Request.Context(), username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// EditProfile replaces the authenticated user's profile fields.
func (h *UserHandler) EditProfile(c *gin.Context) {
	username := middleware.CurrentUser(c)

	var req models.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("EditProfile binding error for %s: %v", username, err)
		badRequest(c, err)
		return
	}

	err := h.Svc.UpdateProfile(c.Request.Context(), username, catalog.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Birthday:  req.Birthday,
		Password:  req.Password,
		Avatar:    req.Avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Updated profile for %s", username)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// Dashboard returns the authenticated user's landing data.
func (h *UserHandler) Dashboard(c *gin.Context) {
	dash, err := h.Svc.Dashboard(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
