package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AnonimusZ6/crmx-backend/internal/handlers"
	"github.com/AnonimusZ6/crmx-backend/internal/middleware"
)

func RegisterUserRoutes(r gin.IRouter) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/profile", handlers.GetProfile)
		users.PUT("/profile", handlers.UpdateProfile)
	}
}
