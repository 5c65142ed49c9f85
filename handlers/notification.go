package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetNotifications(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	notifications, err := coord.ListNotifications(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func DeleteNotifications(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := coord.ClearNotifications(ctx, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted successfully"})
}

func DeleteNotification(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := coord.ClearNotification(ctx, actor, notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
