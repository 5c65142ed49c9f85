package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTTL is how long a notification stays visible before the
// TTL index removes it.
const NotificationTTL = 15 * 24 * time.Hour

type NotificationType string

const (
	NotificationFollow   NotificationType = "follow"
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationRepost   NotificationType = "repost"
	NotificationBookmark NotificationType = "bookmark"
)

type Notification struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From primitive.ObjectID `bson:"from" json:"from"`
	To   primitive.ObjectID `bson:"to" json:"to"`
	Type NotificationType   `bson:"type" json:"type"`

	// Optional pointer to the post the action happened on.
	PostID *primitive.ObjectID `bson:"postId,omitempty" json:"postId,omitempty"`

	// Stored as a BSON date so the TTL index can expire it.
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	FromUser *PublicUser `bson:"-" json:"fromUser,omitempty"` // populated in responses only
}

// Expired reports whether the notification is past its TTL. Reads filter
// on this as well so a lagging TTL sweep never leaks stale entries.
func (n *Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= NotificationTTL
}
