// api/router.go
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/api/handlers"
	"github.com/Annany2002/flashdeck-backend/api/middleware"
	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
)

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(db *sql.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.ErrorHandler())

	svc := catalog.NewService(db, cfg.BcryptCost)
	userHandler := handlers.NewUserHandler(svc, cfg)
	setHandler := handlers.NewSetHandler(svc)
	collectionHandler := handlers.NewCollectionHandler(svc)
	browseHandler := handlers.NewBrowseHandler(db, svc)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	requireAuth := middleware.AuthMiddleware(cfg)
	requireBearer := middleware.BearerAuthMiddleware(cfg)

	// --- Public Routes ---
	router.GET("/ping", browseHandler.Ping)
	router.GET("/stats", browseHandler.Stats)
	router.GET("/languages", browseHandler.Languages)
	router.GET("/categories", browseHandler.Categories)

	router.POST("/submit_signup", userHandler.Signup)
	router.POST("/submit_login", middleware.RateLimitMiddleware(loginLimiter), userHandler.Login)

	router.GET("/getUser/:username", userHandler.GetUser)
	router.GET("/set/:setID", setHandler.GetSet)
	router.GET("/flashcards/:setID", setHandler.GetFlashcards)
	router.POST("/quickSearch/:username", browseHandler.QuickSearch)
	router.POST("/advancedSearch/:username", browseHandler.AdvancedSearch)

	userRoutes := router.Group("/user/:username")
	{
		userRoutes.GET("/hasSet/:setID", collectionHandler.HasSet)
		userRoutes.GET("/view/:setID", setHandler.ViewSet)
		userRoutes.GET("/explore", browseHandler.Explore)
		userRoutes.GET("/explore/:group/:index", browseHandler.ExploreGroup)
	}

	// --- Protected Routes ---
	authUserRoutes := router.Group("/user/:username", requireAuth)
	{
		authUserRoutes.GET("", userHandler.Dashboard)
		authUserRoutes.POST("/addSet/:setID", collectionHandler.AddSet)
		authUserRoutes.POST("/removeSet/:setID", collectionHandler.RemoveSet)
	}
	router.GET("/user/:username/delete/:setID", requireBearer, setHandler.DeleteSet)
	router.POST("/create_set/:username", requireAuth, setHandler.CreateSet)
	router.POST("/edit_set/:setID", requireAuth, setHandler.EditSet)
	router.POST("/editProfile/:username", requireAuth, userHandler.EditProfile)

	return router
}
