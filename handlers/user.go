package handlers

import (
	"net/http"

	"chirp/engagement"

	"github.com/gin-gonic/gin"
)

func GetUserProfile(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	user, err := coord.Profile(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func GetSuggestedUsers(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	suggested, err := coord.SuggestedUsers(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggested)
}

func GetFollowers(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	followers, err := coord.Followers(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, followers)
}

func GetFollowing(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	following, err := coord.Following(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, following)
}

// FollowUser toggles the follow edge between the actor and :id and
// returns the resulting state.
func FollowUser(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	following, err := coord.ToggleFollow(ctx, actor, target)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Unfollowed successfully"
	if following {
		message = "Followed successfully"
	}
	c.JSON(http.StatusOK, gin.H{"following": following, "message": message})
}

type UpdateProfileRequest struct {
	FullName        *string `json:"fullName"`
	Email           *string `json:"email"`
	Username        *string `json:"username"`
	Bio             *string `json:"bio"`
	Link            *string `json:"link"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
	ProfileImg      string  `json:"profileImg"`
	CoverImg        string  `json:"coverImg"`
}

func UpdateUserProfile(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := coord.UpdateProfile(ctx, actor, engagement.ProfileUpdate{
		FullName:        req.FullName,
		Email:           req.Email,
		Username:        req.Username,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImg:      req.ProfileImg,
		CoverImg:        req.CoverImg,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
