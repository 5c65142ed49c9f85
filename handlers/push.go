package handlers

import (
	"net/http"
	"time"

	"chirp/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetVapidPublicKey(c *gin.Context) {
	publicKey := pushSender.PublicKey()
	if publicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
}

func SubscribePush(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription payload"})
		return
	}
	if sub.Endpoint == "" {
		respondError(c, models.NewValidationError("Subscription endpoint is required"))
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	record := &models.PushSubscription{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Sub:       sub,
		CreatedAt: time.Now().Unix(),
	}
	if err := subs.Insert(ctx, record); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed to push notifications"})
}
