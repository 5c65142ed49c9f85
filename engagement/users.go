package engagement

import (
	"context"
	"log"
	"regexp"
	"strings"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Profile returns a user by username.
func (c *Coordinator) Profile(ctx context.Context, username string) (*models.User, error) {
	return c.users.GetByUsername(ctx, username)
}

// SuggestedUsers returns up to four users the actor does not follow yet.
func (c *Coordinator) SuggestedUsers(ctx context.Context, actorID primitive.ObjectID) ([]models.PublicUser, error) {
	actor, err := c.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	exclude := append([]primitive.ObjectID{actorID}, actor.Following...)
	users, err := c.users.Suggested(ctx, exclude, 4)
	if err != nil {
		return nil, err
	}
	return publicProfiles(users), nil
}

// Followers resolves a user's follower ids to public profiles.
func (c *Coordinator) Followers(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := c.users.GetMany(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	return publicProfiles(users), nil
}

// Following resolves a user's following ids to public profiles.
func (c *Coordinator) Following(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := c.users.GetMany(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	return publicProfiles(users), nil
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave
// unchanged"; empty string clears the field where that makes sense.
type ProfileUpdate struct {
	FullName        *string
	Email           *string
	Username        *string
	Bio             *string
	Link            *string
	CurrentPassword string
	NewPassword     string
	ProfileImg      string // data URI or URL, uploaded when non-empty
	CoverImg        string
}

// UpdateProfile applies a partial profile update for the actor. A password
// change requires the current password; replaced images are destroyed in
// object storage after the new one is uploaded.
func (c *Coordinator) UpdateProfile(ctx context.Context, actorID primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	actor, err := c.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{}

	if (update.NewPassword == "") != (update.CurrentPassword == "") {
		return nil, models.NewValidationError("Both current and new password are required to change password")
	}
	if update.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(update.CurrentPassword)); err != nil {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		if len(update.NewPassword) < 6 {
			return nil, models.NewValidationError("Password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewDependencyError("failed to hash password", err)
		}
		set["password"] = string(hashed)
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if !emailPattern.MatchString(email) {
			return nil, models.NewValidationError("Invalid email format")
		}
		if email != actor.Email {
			existing, err := c.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("Email already in use")
			}
			set["email"] = email
		}
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return nil, models.NewValidationError("Username cannot be empty")
		}
		if username != actor.Username {
			if _, err := c.users.GetByUsername(ctx, username); err == nil {
				return nil, models.NewConflictError("Username already taken")
			} else if models.KindOf(err) != models.KindNotFound {
				return nil, err
			}
			set["username"] = username
		}
	}

	if update.FullName != nil {
		set["fullName"] = strings.TrimSpace(*update.FullName)
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Link != nil {
		set["link"] = strings.TrimSpace(*update.Link)
	}

	if update.ProfileImg != "" {
		url, err := c.replaceImage(ctx, actor.ProfileImg, update.ProfileImg, "chirp/profiles")
		if err != nil {
			return nil, err
		}
		set["profileImg"] = url
	}
	if update.CoverImg != "" {
		url, err := c.replaceImage(ctx, actor.CoverImg, update.CoverImg, "chirp/covers")
		if err != nil {
			return nil, err
		}
		set["coverImg"] = url
	}

	if len(set) > 0 {
		if err := c.users.UpdateFields(ctx, actorID, set); err != nil {
			return nil, err
		}
	}
	return c.users.GetByID(ctx, actorID)
}

func (c *Coordinator) replaceImage(ctx context.Context, oldURL, source, folder string) (string, error) {
	url, err := c.uploader.Upload(ctx, source, folder)
	if err != nil {
		return "", err
	}
	if oldURL != "" {
		if err := c.uploader.Destroy(ctx, oldURL); err != nil {
			log.Printf("replaceImage: failed to destroy %s: %v", oldURL, err)
		}
	}
	return url, nil
}

func publicProfiles(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
