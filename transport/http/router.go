package http

import (
	"github.com/gin-gonic/gin"

	"github.com/heimdall-auth/heimdall/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(auth *service.AuthService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(auth)

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.Refresh)
		authGroup.POST("/logout", handlers.Logout)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(auth))
	{
		api.GET("/me", handlers.Me)
		api.GET("/authorize", handlers.Authorize)
	}

	return router
}
