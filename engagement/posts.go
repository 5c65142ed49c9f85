package engagement

import (
	"context"
	"log"
	"strings"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost creates an original post. At least one of text and image is
// required; the image (a data URI or URL) is pushed to object storage and
// only its delivery URL is persisted.
func (c *Coordinator) CreatePost(ctx context.Context, actorID primitive.ObjectID, text, image string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == "" {
		return nil, models.NewValidationError("Text or image is required")
	}
	if _, err := c.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	var imgURL string
	if image != "" {
		url, err := c.uploader.Upload(ctx, image, "chirp/posts")
		if err != nil {
			return nil, err
		}
		imgURL = url
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Text:      text,
		Img:       imgURL,
		Likes:     []primitive.ObjectID{},
		Bookmarks: []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: c.now().Unix(),
	}
	if err := c.posts.Insert(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the actor's own post, releasing its image first.
func (c *Coordinator) DeletePost(ctx context.Context, actorID, postID primitive.ObjectID) error {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("Not authorized to delete this post")
	}
	if post.Img != "" {
		if err := c.uploader.Destroy(ctx, post.Img); err != nil {
			return err
		}
	}
	return c.posts.Delete(ctx, postID)
}

// GetPost returns one post with its author and comment authors populated.
func (c *Coordinator) GetPost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	posts, err := c.populate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// FeedAll returns every post, newest first.
func (c *Coordinator) FeedAll(ctx context.Context) ([]models.Post, error) {
	posts, err := c.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return c.populate(ctx, posts)
}

// FeedFollowing returns posts authored by the users the actor follows.
func (c *Coordinator) FeedFollowing(ctx context.Context, actorID primitive.ObjectID) ([]models.Post, error) {
	actor, err := c.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	posts, err := c.posts.ListByAuthors(ctx, actor.Following)
	if err != nil {
		return nil, err
	}
	return c.populate(ctx, posts)
}

// LikedPosts returns the posts a user has liked.
func (c *Coordinator) LikedPosts(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := c.posts.ListByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, err
	}
	return c.populate(ctx, posts)
}

// BookmarkedPosts returns the actor's bookmarked posts.
func (c *Coordinator) BookmarkedPosts(ctx context.Context, actorID primitive.ObjectID) ([]models.Post, error) {
	actor, err := c.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	posts, err := c.posts.ListByIDs(ctx, actor.BookmarkedPosts)
	if err != nil {
		return nil, err
	}
	return c.populate(ctx, posts)
}

// PostsByUsername returns a user's posts, newest first.
func (c *Coordinator) PostsByUsername(ctx context.Context, username string) ([]models.Post, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := c.posts.ListByAuthors(ctx, []primitive.ObjectID{user.ID})
	if err != nil {
		return nil, err
	}
	return c.populate(ctx, posts)
}

// populate attaches public author profiles to posts and their comments,
// one batched user lookup per listing.
func (c *Coordinator) populate(ctx context.Context, posts []models.Post) ([]models.Post, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for i := range posts {
		if !seen[posts[i].UserID] {
			seen[posts[i].UserID] = true
			ids = append(ids, posts[i].UserID)
		}
		for j := range posts[i].Comments {
			if !seen[posts[i].Comments[j].UserID] {
				seen[posts[i].Comments[j].UserID] = true
				ids = append(ids, posts[i].Comments[j].UserID)
			}
		}
	}

	users, err := c.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Public()
	}

	for i := range posts {
		if pub, ok := byID[posts[i].UserID]; ok {
			posts[i].User = &pub
		} else {
			// Author document missing, keep the post but flag it.
			log.Printf("populate: author %s missing for post %s", posts[i].UserID.Hex(), posts[i].ID.Hex())
		}
		for j := range posts[i].Comments {
			if pub, ok := byID[posts[i].Comments[j].UserID]; ok {
				posts[i].Comments[j].User = &pub
			}
		}
	}
	return posts, nil
}
