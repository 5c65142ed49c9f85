package models

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription is a browser push endpoint registered by a user.
type PushSubscription struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Sub       webpush.Subscription `bson:"sub" json:"sub"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
}
