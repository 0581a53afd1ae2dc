package routes

import (
	"github.com/Revanthgowda45/CityFix1/controllers"
	"github.com/Revanthgowda45/CityFix1/middlewares"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report routes
func ReportRoutes(r *gin.Engine, rc *controllers.ReportController) {
	reports := r.Group("/api/reports")
	{
		reports.GET("", rc.ListReports)
		reports.GET("/recent", rc.RecentReports)
		reports.GET("/mine", middlewares.AuthMiddleware(), rc.MyReports)
		reports.GET("/analytics", middlewares.AuthMiddleware(), rc.GetAnalytics)
		reports.POST("", middlewares.AuthMiddleware(), middlewares.ReportRateLimiter(5), rc.CreateReport)
		reports.GET("/:id", rc.GetReport)
		reports.PUT("/:id", middlewares.AuthMiddleware(), rc.UpdateReport)
		reports.DELETE("/:id", middlewares.AuthMiddleware(), rc.DeleteReport)
		reports.POST("/:id/vote", middlewares.AuthMiddleware(), rc.VoteReport)
		reports.POST("/:id/comments", middlewares.AuthMiddleware(), rc.AddComment)
	}
}
