package routes

import (
	"time"

	"chirp/handlers"
	"chirp/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth endpoints take a tight rate limit, the rest of the API a loose one.
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware(10, time.Minute))
	auth.POST("/signup", handlers.Signup)
	auth.POST("/login", handlers.Login)
	auth.POST("/logout", handlers.Logout)
	auth.GET("/me", middleware.JWTAuthMiddleware(), handlers.GetMe)

	router.GET("/api/users/profile/:username", handlers.GetUserProfile)
	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)

	protected := router.Group("/api")
	protected.Use(middleware.RateLimitMiddleware(120, time.Minute))
	protected.Use(middleware.JWTAuthMiddleware())

	// Users
	protected.GET("/users/suggested", handlers.GetSuggestedUsers)
	protected.GET("/users/:id/followers", handlers.GetFollowers)
	protected.GET("/users/:id/following", handlers.GetFollowing)
	protected.POST("/users/follow/:id", handlers.FollowUser)
	protected.POST("/users/update", handlers.UpdateUserProfile)

	// Posts
	protected.POST("/posts/create", handlers.CreatePost)
	protected.GET("/posts/all", handlers.GetAllPosts)
	protected.GET("/posts/following", handlers.GetFollowingPosts)
	protected.GET("/posts/likes/:id", handlers.GetLikedPosts)
	protected.GET("/posts/bookmarks", handlers.GetBookmarkedPosts)
	protected.GET("/posts/user/:username", handlers.GetUserPosts)
	protected.GET("/posts/:id", handlers.GetPost)
	protected.DELETE("/posts/:id", handlers.DeletePost)
	protected.POST("/posts/like/:id", handlers.LikePost)
	protected.POST("/posts/bookmark/:id", handlers.BookmarkPost)
	protected.POST("/posts/comment/:id", handlers.CommentOnPost)
	protected.DELETE("/posts/:id/comment/:commentId", handlers.DeleteComment)
	protected.POST("/posts/:id/repost", handlers.RepostPost)

	// Notifications
	protected.GET("/notifications", handlers.GetNotifications)
	protected.DELETE("/notifications", handlers.DeleteNotifications)
	protected.DELETE("/notifications/:id", handlers.DeleteNotification)

	// Push subscriptions
	protected.POST("/subscribe", handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
