package main

import (
	"log"
	"os"

	"songlin/internal/config"
	"songlin/internal/db"
	"songlin/internal/handlers"
	"songlin/internal/middleware"
	"songlin/internal/services"
	"songlin/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()

	// Initialize Database
	db.Init()

	// Redis：重复内容检测窗口
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Stores
	comments := store.NewComments(db.DB)
	subjects := store.NewSubjects(db.DB)
	denylistStore := store.NewDenylist(db.DB)
	likes := store.NewLikes(db.DB)
	badges := store.NewBadges(db.DB)
	notifications := store.NewNotifications(db.DB)
	activity := store.NewActivity(rdb, cfg.DuplicateWindow)

	// Services
	lexicon := services.NewLexiconFilter(cfg.ClassifyMinChars)
	denylist := services.NewDenylistService(denylistStore, logger)
	pipeline := services.NewSubmissionPipeline(cfg, lexicon, denylist, comments, activity, logger)
	recognition := services.NewRecognitionService(badges, notifications, logger)
	moderation := services.NewModerationService(comments, subjects, notifications, recognition, logger)
	tree := services.NewTreeService(comments, likes)
	likeService := services.NewLikeService(likes, comments)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	sessionStore := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("songlin_session", sessionStore))

	// Middleware
	r.Use(middleware.LoadUser())

	// Handlers
	authHandler := handlers.NewAuthHandler()
	commentHandler := handlers.NewCommentHandler(pipeline, tree, likeService, subjects)
	moderationHandler := handlers.NewModerationHandler(moderation, denylist)
	badgeHandler := handlers.NewBadgeHandler(recognition)

	// Public Routes
	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/api/subjects/:sid/comments", commentHandler.Tree)
	r.GET("/api/leaderboard", badgeHandler.Leaderboard)
	r.GET("/api/users/:id/badges", badgeHandler.UserBadges)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/api/subjects/:sid/comments", commentHandler.Create)
		authorized.POST("/api/comments/:cid/like", commentHandler.Like)
		authorized.DELETE("/api/comments/:cid/like", commentHandler.Unlike)
	}

	// Moderator Routes
	mod := r.Group("/api/mod")
	mod.Use(middleware.ModeratorRequired())
	{
		mod.GET("/comments", moderationHandler.Queue)
		mod.POST("/comments/:cid/approve", moderationHandler.Approve)
		mod.POST("/comments/:cid/reject", moderationHandler.Reject)
		mod.POST("/comments/:cid/spam", moderationHandler.MarkSpam)
		mod.DELETE("/comments/:cid", moderationHandler.Delete)

		mod.GET("/denylist", moderationHandler.ListDenylist)
		mod.POST("/denylist", moderationHandler.AddDenylist)
		mod.DELETE("/denylist/:id", moderationHandler.RemoveDenylist)

		mod.POST("/users/:id/badges/:slug", badgeHandler.ManualAward)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("SongLin server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
