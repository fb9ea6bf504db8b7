package handler

import (
	"database/sql"

	"tweet_handler/internal/cache"
	"tweet_handler/internal/config"
	"tweet_handler/internal/middleware"
	"tweet_handler/internal/observability"
	"tweet_handler/internal/tweet"
	"tweet_handler/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rabbitmq/amqp091-go"
)

// SetupHandler initializes all dependencies and routes
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) *gin.Engine {

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	// Attached before the route table; gin only applies middleware to
	// routes registered after it.
	r.Use(middleware.PrometheusMiddleware(observability.GlobalMetrics))

	// Initialize repositories
	userRepo := user.NewUserRepository()
	followRepo := user.NewFollowRepository()
	tweetRepo := tweet.NewTweetRepository()

	// Initialize services
	userService := user.NewUserService(userRepo, followRepo, db, cache.NewFeedCache(redisClient))
	tweetService := tweet.NewTweetService(tweetRepo, db, conn, redisClient)

	// Initialize controllers
	userController := user.NewUserController(userService, cfg.JWT.Secret)
	tweetController := tweet.NewTweetController(tweetService)

	setupRoutes(r, db, userController, tweetController, tweetRepo, followRepo, cfg.JWT.Secret)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(
	r *gin.Engine,
	db *sql.DB,
	userCtrl *user.UserController,
	tweetCtrl *tweet.TweetController,
	tweetRepo tweet.TweetRepositoryInterface,
	followRepo user.FollowRepositoryInterface,
	jwtSecret string,
) {
	// Public routes
	r.POST("/register/", userCtrl.Register)
	r.POST("/login/", userCtrl.Login)

	requireAuth := middleware.AuthMiddleware(jwtSecret)
	requireFollows := middleware.FollowGate(db, tweetRepo, followRepo)

	// Self-scoped routes: the caller's identity is the only input
	userGroup := r.Group("/user")
	userGroup.Use(requireAuth)
	{
		userGroup.GET("/tweets/feed/", tweetCtrl.Feed)
		userGroup.GET("/tweets/", tweetCtrl.MyTweets)
		userGroup.POST("/tweets/", tweetCtrl.Create)
		userGroup.GET("/following/", userCtrl.Following)
		userGroup.POST("/following/", userCtrl.Follow)
		userGroup.DELETE("/following/:username/", userCtrl.Unfollow)
		userGroup.GET("/followers/", userCtrl.Followers)
	}

	// Single-tweet routes: reads are gated on following the author,
	// deletion checks authorship in the service instead
	tweetGroup := r.Group("/tweets")
	tweetGroup.Use(requireAuth)
	{
		tweetGroup.GET("/:tweetId/", requireFollows, tweetCtrl.Detail)
		tweetGroup.GET("/:tweetId/likes/", requireFollows, tweetCtrl.Likes)
		tweetGroup.GET("/:tweetId/replies/", requireFollows, tweetCtrl.Replies)
		tweetGroup.POST("/:tweetId/like/", requireFollows, tweetCtrl.Like)
		tweetGroup.POST("/:tweetId/replies/", requireFollows, tweetCtrl.Reply)
		tweetGroup.DELETE("/:tweetId/", tweetCtrl.Delete)
	}
}
