// api/handlers/handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/internal/core"
	"github.com/Annany2002/flashdeck-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// badRequest attaches err as a binding failure so ErrorHandler answers 400.
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
}

// pathID parses a positive id path parameter, attaching a 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		customLog.Warnf("Invalid %s path parameter '%s': %v", name, c.Param(name), err)
		badRequest(c, err)
		return 0, false
	}
	return id, true
}

// pathUsername validates the :username path parameter.
func pathUsername(c *gin.Context) (string, bool) {
	username := c.Param("username")
	if !core.IsValidUsername(username) {
		customLog.Warnf("Invalid username path parameter '%s'", username)
		badRequest(c, errInvalidUsername)
		return "", false
	}
	return username, true
}
