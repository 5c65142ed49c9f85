package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirp/database"
	"chirp/engagement"
	"chirp/handlers"
	"chirp/middleware"
	"chirp/push"
	"chirp/routes"
	"chirp/store"
	"chirp/uploader"
	"chirp/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting chirp backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	if os.Getenv("JWT_SECRET") == "" || os.Getenv("MONGODB_URI") == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}

	if err := database.EnsureIndexes(); err != nil {
		log.Fatal("Failed to create indexes: ", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the stores, collaborators and coordinator.
	userStore := store.NewMongoUserStore(database.Users)
	postStore := store.NewMongoPostStore(database.Posts)
	notificationStore := store.NewMongoNotificationStore(database.Notifications)
	subscriptionStore := store.NewMongoSubscriptionStore(database.PushSubs)

	var imageUploader uploader.Uploader = uploader.Noop{}
	if url := os.Getenv("CLOUDINARY_URL"); url != "" {
		cld, err := uploader.NewCloudinary(url)
		if err != nil {
			log.Fatal("Invalid CLOUDINARY_URL: ", err)
		}
		imageUploader = cld
	} else {
		log.Println("CLOUDINARY_URL not set, image uploads disabled")
	}

	hub := websocket.NewHub()
	go hub.Run()

	pushSender := push.NewSender(subscriptionStore)

	coordinator := engagement.New(userStore, postStore, notificationStore, imageUploader, hub, pushSender)
	handlers.Init(coordinator, userStore, subscriptionStore, pushSender)

	router := routes.SetupRouter()
	router.GET("/ws", func(c *gin.Context) {
		userID, err := middleware.ParseToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		hub.Serve(c.Writer, c.Request, userID)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}
	if err := database.DisconnectMongo(); err != nil {
		log.Println("Failed to disconnect MongoDB: ", err)
	}

	log.Println("Server stopped gracefully")
}
