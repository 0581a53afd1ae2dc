package routes

import (
	"github.com/Revanthgowda45/CityFix1/controllers"
	"github.com/Revanthgowda45/CityFix1/middlewares"

	"github.com/gin-gonic/gin"
)

// UploadRoutes sets up the photo upload routes
func UploadRoutes(r *gin.Engine, uc *controllers.UploadController) {
	upload := r.Group("/api/upload")
	{
		upload.POST("", middlewares.AuthMiddleware(), uc.UploadImage)
		upload.DELETE("", middlewares.AuthMiddleware(), uc.DeleteImage)
	}
}
