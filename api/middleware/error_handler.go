// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/flashdeck-backend/internal/auth"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach errors with c.Error and return; the last one decides the response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		ginErr := c.Errors.Last()
		err := ginErr.Err
		customLog.Debugf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		statusCode, userMessage := classify(ginErr)

		if statusCode == http.StatusInternalServerError {
			customLog.Errorf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Warnf("[ErrorHandler] Response already written before handling error: %v", err)
		}
	}
}

// classify maps an attached error to a status code and a client-facing message.
func classify(ginErr *gin.Error) (int, string) {
	err := ginErr.Err

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			customLog.Debugf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
		}
		return http.StatusBadRequest, "Validation failed. Please check your input."
	case ginErr.IsType(gin.ErrorTypeBind), errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrSetNotFound),
		errors.Is(err, storage.ErrLanguageNotFound),
		errors.Is(err, storage.ErrCategoryNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, storage.ErrUsernameExists),
		errors.Is(err, storage.ErrAlreadyCollected),
		errors.Is(err, storage.ErrConstraintViolation):
		return http.StatusConflict, err.Error()

	case errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password."
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Authentication token has expired."
	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenClaimsInvalid),
		errors.Is(err, auth.ErrUnexpectedSigningMethod):
		return http.StatusUnauthorized, "Invalid or malformed authentication token."
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, catalog.ErrForbidden):
		return http.StatusForbidden, err.Error()

	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}
