// Package store is the document persistence layer. The engagement
// coordinator talks to these interfaces only; Mongo implementations live
// in mongo.go and in-memory implementations for tests in memory.go.
package store

import (
	"context"
	"time"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship set fields on the user document. Only the coordinator
// mutates these, and always both sides of a relationship together.
const (
	FieldFollowers       = "followers"
	FieldFollowing       = "following"
	FieldLikedPosts      = "likedPosts"
	FieldBookmarkedPosts = "bookmarkedPosts"
)

// Engagement set fields on the post document.
const (
	FieldLikes     = "likes"
	FieldBookmarks = "bookmarks"
)

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByEmail returns (nil, nil) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Insert(ctx context.Context, user *models.User) error
	// UpdateFields applies a field-level $set on one user document.
	UpdateFields(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error
	// AddToSet and Pull mutate one of the relationship set fields above.
	AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	// Suggested returns up to limit users excluding the given ids, newest first.
	Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error)
}

type PostStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	Pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error
	PushComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) error
	PullComment(ctx context.Context, id, commentID primitive.ObjectID) error
	// Listings, newest first.
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []primitive.ObjectID) ([]models.Post, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListFor returns notifications addressed to the user created after
	// cutoff, newest first.
	ListFor(ctx context.Context, to primitive.ObjectID, cutoff time.Time) ([]models.Notification, error)
	DeleteAllFor(ctx context.Context, to primitive.ObjectID) error
	// DeleteOneFor deletes the notification only if addressed to the user;
	// reports whether anything was removed.
	DeleteOneFor(ctx context.Context, id, to primitive.ObjectID) (bool, error)
}

type SubscriptionStore interface {
	Insert(ctx context.Context, sub *models.PushSubscription) error
	ListFor(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error)
}
