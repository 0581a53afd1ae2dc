package routes

import (
	"github.com/Revanthgowda45/CityFix1/controllers"
	"github.com/Revanthgowda45/CityFix1/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.GET("/me", middlewares.AuthMiddleware(), controllers.GetMe)
		auth.POST("/logout", controllers.LogoutUser)
	}
}
