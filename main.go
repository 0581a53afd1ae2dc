package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/Revanthgowda45/CityFix1/config"
	"github.com/Revanthgowda45/CityFix1/controllers"
	"github.com/Revanthgowda45/CityFix1/models"
	"github.com/Revanthgowda45/CityFix1/remote"
	"github.com/Revanthgowda45/CityFix1/routes"
	"github.com/Revanthgowda45/CityFix1/storage"
	"github.com/Revanthgowda45/CityFix1/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	log.Println("MongoDB connection established successfully!")

	config.ConnectRedis()

	if err := models.EnsureVoteIndex(db.Collection("votes")); err != nil {
		log.Printf("Failed to ensure vote index: %v", err)
	}

	mongoStore := remote.NewMongoStore(db, config.RedisClient)
	reportStore := store.New(mongoStore)

	ctx := context.Background()
	if err := reportStore.Refresh(ctx); err != nil {
		log.Printf("Initial report fetch failed: %v", err)
	}

	stop, err := reportStore.Start(ctx)
	if err != nil {
		log.Printf("Failed to start change subscription: %v", err)
	} else {
		defer stop()
	}

	var blob *storage.BlobService
	if os.Getenv("S3_BUCKET") != "" {
		blob, err = storage.NewBlobService(storage.Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    os.Getenv("S3_REGION"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		})
		if err != nil {
			log.Printf("Failed to initialize photo storage: %v", err)
		}
	} else {
		log.Println("S3_BUCKET not set, photo uploads disabled")
	}

	r := gin.Default()

	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r)
	routes.ReportRoutes(r, controllers.NewReportController(reportStore, mongoStore))
	routes.UploadRoutes(r, controllers.NewUploadController(blob))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
