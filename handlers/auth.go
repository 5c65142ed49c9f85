package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"chirp/middleware"
	"chirp/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(req.Email) {
		respondError(c, models.NewValidationError("Invalid email format"))
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if _, err := users.GetByUsername(ctx, req.Username); err == nil {
		respondError(c, models.NewConflictError("Username already taken"))
		return
	} else if models.KindOf(err) != models.KindNotFound {
		respondError(c, err)
		return
	}
	existing, err := users.GetByEmail(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		respondError(c, models.NewConflictError("Email already in use"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		ID:              primitive.NewObjectID(),
		Username:        req.Username,
		FullName:        req.FullName,
		Email:           req.Email,
		PasswordHash:    string(hashed),
		Followers:       []primitive.ObjectID{},
		Following:       []primitive.ObjectID{},
		LikedPosts:      []primitive.ObjectID{},
		BookmarkedPosts: []primitive.ObjectID{},
		CreatedAt:       time.Now().Unix(),
	}
	if err := users.Insert(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.IssueToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   token,
		"user":    user,
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := middleware.IssueToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout exists for client symmetry; tokens are stateless and simply
// discarded client-side.
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func GetMe(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := users.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
