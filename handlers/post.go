package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

func CreatePost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	post, err := coord.CreatePost(ctx, actor, req.Text, req.Img)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

func DeletePost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := coord.DeletePost(ctx, actor, postID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	post, err := coord.GetPost(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func GetAllPosts(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	posts, err := coord.FeedAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func GetFollowingPosts(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	posts, err := coord.FeedFollowing(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func GetLikedPosts(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	posts, err := coord.LikedPosts(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func GetBookmarkedPosts(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	posts, err := coord.BookmarkedPosts(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func GetUserPosts(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	posts, err := coord.PostsByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func LikePost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	likes, err := coord.ToggleLike(ctx, actor, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func BookmarkPost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	bookmarks, err := coord.ToggleBookmark(ctx, actor, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

type CommentRequest struct {
	Text string `json:"text"`
}

func CommentOnPost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := coord.AddComment(ctx, actor, postID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func DeleteComment(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := coord.DeleteComment(ctx, actor, postID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

type RepostRequest struct {
	Text string `json:"text"`
}

func RepostPost(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RepostRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	repost, err := coord.Repost(ctx, actor, postID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Reposted successfully", "post": repost})
}
