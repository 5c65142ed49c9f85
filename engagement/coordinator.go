// Package engagement coordinates every mutation that spans more than one
// document: the follow graph, like/bookmark toggles, comments, reposts and
// the notification fan-out they produce. Handlers never touch the stores
// directly for these operations, so both sides of a relationship can only
// change together.
package engagement

import (
	"context"
	"log"
	"strings"
	"time"

	"chirp/models"
	"chirp/store"
	"chirp/uploader"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier delivers a freshly written notification to the recipient over a
// live channel (websocket, web push). Delivery is best-effort and must not
// block or fail the triggering operation.
type Notifier interface {
	Notify(n *models.Notification)
}

type Coordinator struct {
	users         store.UserStore
	posts         store.PostStore
	notifications store.NotificationStore
	uploader      uploader.Uploader
	notifiers     []Notifier
	now           func() time.Time
}

func New(users store.UserStore, posts store.PostStore, notifications store.NotificationStore, up uploader.Uploader, notifiers ...Notifier) *Coordinator {
	if up == nil {
		up = uploader.Noop{}
	}
	return &Coordinator{
		users:         users,
		posts:         posts,
		notifications: notifications,
		uploader:      up,
		notifiers:     notifiers,
		now:           time.Now,
	}
}

// fanOut writes a notification from actor to recipient. Self-actions never
// notify. A failed write is logged, not propagated: the triggering mutation
// has already been applied and stands on its own.
func (c *Coordinator) fanOut(ctx context.Context, typ models.NotificationType, from, to primitive.ObjectID, postID *primitive.ObjectID) {
	if from == to {
		return
	}
	n := &models.Notification{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Type:      typ,
		PostID:    postID,
		CreatedAt: c.now(),
	}
	if err := c.notifications.Insert(ctx, n); err != nil {
		log.Printf("fan-out: failed to write %s notification: %v", typ, err)
		return
	}
	for _, notifier := range c.notifiers {
		notifier.Notify(n)
	}
}

// ToggleFollow follows targetID if the actor does not follow them yet,
// unfollows otherwise. Both sides of the edge (actor.following and
// target.followers) are written actor-owned side first; a failure on the
// second write is compensated and surfaced as a dependency failure so a
// one-sided edge is never reported as success. Returns the now-following
// state. Only a fresh follow notifies; unfollow is side-effect free.
func (c *Coordinator) ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	if actorID == targetID {
		return false, models.NewInvalidOperationError("You cannot follow or unfollow yourself")
	}

	actor, err := c.users.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if _, err := c.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	if actor.IsFollowing(targetID) {
		if err := c.users.Pull(ctx, actorID, store.FieldFollowing, targetID); err != nil {
			return false, err
		}
		if err := c.users.Pull(ctx, targetID, store.FieldFollowers, actorID); err != nil {
			if undoErr := c.users.AddToSet(ctx, actorID, store.FieldFollowing, targetID); undoErr != nil {
				log.Printf("unfollow: failed to restore following edge for %s: %v", actorID.Hex(), undoErr)
			}
			return false, models.NewDependencyError("unfollow partially applied: follower list may be stale", err)
		}
		return false, nil
	}

	if err := c.users.AddToSet(ctx, actorID, store.FieldFollowing, targetID); err != nil {
		return false, err
	}
	if err := c.users.AddToSet(ctx, targetID, store.FieldFollowers, actorID); err != nil {
		if undoErr := c.users.Pull(ctx, actorID, store.FieldFollowing, targetID); undoErr != nil {
			log.Printf("follow: failed to remove following edge for %s: %v", actorID.Hex(), undoErr)
		}
		return false, models.NewDependencyError("follow partially applied: follower list may be stale", err)
	}

	c.fanOut(ctx, models.NotificationFollow, actorID, targetID, nil)
	return true, nil
}

// ToggleLike likes the post if the actor has not liked it yet, unlikes
// otherwise, keeping post.likes and actor.likedPosts consistent. Returns
// the updated like set. A self-like is recorded but never notifies.
func (c *Coordinator) ToggleLike(ctx context.Context, actorID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := c.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	if post.HasLike(actorID) {
		if err := c.users.Pull(ctx, actorID, store.FieldLikedPosts, postID); err != nil {
			return nil, err
		}
		if err := c.posts.Pull(ctx, postID, store.FieldLikes, actorID); err != nil {
			if undoErr := c.users.AddToSet(ctx, actorID, store.FieldLikedPosts, postID); undoErr != nil {
				log.Printf("unlike: failed to restore likedPosts for %s: %v", actorID.Hex(), undoErr)
			}
			return nil, models.NewDependencyError("unlike partially applied: like counts may be stale", err)
		}
		return withoutID(post.Likes, actorID), nil
	}

	if err := c.users.AddToSet(ctx, actorID, store.FieldLikedPosts, postID); err != nil {
		return nil, err
	}
	if err := c.posts.AddToSet(ctx, postID, store.FieldLikes, actorID); err != nil {
		if undoErr := c.users.Pull(ctx, actorID, store.FieldLikedPosts, postID); undoErr != nil {
			log.Printf("like: failed to remove likedPosts for %s: %v", actorID.Hex(), undoErr)
		}
		return nil, models.NewDependencyError("like partially applied: like counts may be stale", err)
	}

	c.fanOut(ctx, models.NotificationLike, actorID, post.UserID, &postID)
	return append(withoutID(post.Likes, actorID), actorID), nil
}

// ToggleBookmark mirrors ToggleLike on post.bookmarks and
// actor.bookmarkedPosts. Bookmarking does not notify.
func (c *Coordinator) ToggleBookmark(ctx context.Context, actorID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := c.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	if post.HasBookmark(actorID) {
		if err := c.users.Pull(ctx, actorID, store.FieldBookmarkedPosts, postID); err != nil {
			return nil, err
		}
		if err := c.posts.Pull(ctx, postID, store.FieldBookmarks, actorID); err != nil {
			if undoErr := c.users.AddToSet(ctx, actorID, store.FieldBookmarkedPosts, postID); undoErr != nil {
				log.Printf("unbookmark: failed to restore bookmarkedPosts for %s: %v", actorID.Hex(), undoErr)
			}
			return nil, models.NewDependencyError("unbookmark partially applied: bookmark lists may be stale", err)
		}
		return withoutID(post.Bookmarks, actorID), nil
	}

	if err := c.users.AddToSet(ctx, actorID, store.FieldBookmarkedPosts, postID); err != nil {
		return nil, err
	}
	if err := c.posts.AddToSet(ctx, postID, store.FieldBookmarks, actorID); err != nil {
		if undoErr := c.users.Pull(ctx, actorID, store.FieldBookmarkedPosts, postID); undoErr != nil {
			log.Printf("bookmark: failed to remove bookmarkedPosts for %s: %v", actorID.Hex(), undoErr)
		}
		return nil, models.NewDependencyError("bookmark partially applied: bookmark lists may be stale", err)
	}

	return append(withoutID(post.Bookmarks, actorID), actorID), nil
}

// AddComment appends a comment to the post and notifies the author.
func (c *Coordinator) AddComment(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text cannot be empty")
	}

	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := c.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Text:      text,
		CreatedAt: c.now().Unix(),
	}
	if err := c.posts.PushComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	c.fanOut(ctx, models.NotificationComment, actorID, post.UserID, &postID)
	return &comment, nil
}

// DeleteComment removes a comment. Both the comment author and the post
// author may delete it.
func (c *Coordinator) DeleteComment(ctx context.Context, actorID, postID, commentID primitive.ObjectID) error {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	comment := post.FindComment(commentID)
	if comment == nil {
		return models.NewNotFoundError("Comment")
	}
	if comment.UserID != actorID && post.UserID != actorID {
		return models.NewForbiddenError("Not authorized to delete this comment")
	}
	return c.posts.PullComment(ctx, postID, commentID)
}

// Repost creates a new post referencing the source and notifies its
// author. Reposting a repost is allowed; RepostOf stays on the immediate
// parent.
func (c *Coordinator) Repost(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.Post, error) {
	source, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := c.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	repost := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Text:      strings.TrimSpace(text),
		Likes:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Comments:  []models.Comment{},
		RepostOf:  &postID,
		IsRepost:  true,
		CreatedAt: c.now().Unix(),
	}
	if err := c.posts.Insert(ctx, repost); err != nil {
		return nil, err
	}

	c.fanOut(ctx, models.NotificationRepost, actorID, source.UserID, &postID)
	return repost, nil
}

func withoutID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
