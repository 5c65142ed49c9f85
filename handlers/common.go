package handlers

import (
	"context"
	"net/http"
	"time"

	"chirp/engagement"
	"chirp/models"
	"chirp/push"
	"chirp/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborators shared across all handler files, wired once at startup.
var (
	coord      *engagement.Coordinator
	users      store.UserStore
	subs       store.SubscriptionStore
	pushSender *push.Sender
)

func Init(c *engagement.Coordinator, u store.UserStore, s store.SubscriptionStore, p *push.Sender) {
	coord = c
	users = u
	subs = s
	pushSender = p
}

const requestTimeout = 10 * time.Second

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// actorID reads the authenticated user id set by the JWT middleware.
func actorID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func pathID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param + " format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

var statusByKind = map[models.ErrorKind]int{
	models.KindValidation:       http.StatusBadRequest,
	models.KindNotFound:         http.StatusNotFound,
	models.KindForbidden:        http.StatusForbidden,
	models.KindInvalidOperation: http.StatusBadRequest,
	models.KindConflict:         http.StatusConflict,
	models.KindDependency:       http.StatusBadGateway,
}

// respondError maps a classified error onto its HTTP status. The kind is
// included so clients can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if appErr, isApp := err.(*models.AppError); isApp {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": message, "code": kind})
}
