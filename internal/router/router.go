package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"openlens/internal/auth"
	"openlens/internal/config"
	"openlens/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	searchHandler *handler.SearchHandler,
	historyHandler *handler.HistoryHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	required := auth.Required(jwtService, tokenStore)
	optional := auth.Optional(jwtService, tokenStore)

	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/user", authHandler.CurrentUser, required)
	api.POST("/auth/logout", authHandler.Logout, required)
	api.POST("/auth/password", authHandler.ChangePassword, required)
	api.POST("/auth/refresh", authHandler.Refresh, required)
	api.POST("/auth/profile", authHandler.UpdateProfile, required)

	// Search routes: anonymous access allowed, authenticated searches recorded
	api.GET("/search", searchHandler.Search, optional)
	api.GET("/media/:type/:id", searchHandler.Detail, optional)
	api.GET("/media/:type/:id/related", searchHandler.Related, optional)
	api.GET("/stats", searchHandler.Stats)

	// History routes
	api.GET("/history", historyHandler.List, required)
	api.DELETE("/history/:id", historyHandler.DeleteOne, required)
	api.DELETE("/history", historyHandler.Clear, required)

	// Catch-all for unmatched API paths
	api.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{
			"message": "API endpoint not found",
		})
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
