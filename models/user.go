package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`

	ProfileImg string `bson:"profileImg" json:"profileImg"`
	CoverImg   string `bson:"coverImg" json:"coverImg"`
	Bio        string `bson:"bio" json:"bio"`
	Link       string `bson:"link" json:"link"`

	Followers       []primitive.ObjectID `bson:"followers" json:"followers"`
	Following       []primitive.ObjectID `bson:"following" json:"following"`
	LikedPosts      []primitive.ObjectID `bson:"likedPosts" json:"likedPosts"`
	BookmarkedPosts []primitive.ObjectID `bson:"bookmarkedPosts" json:"bookmarkedPosts"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
}

// PublicUser is the author shape embedded in populated posts,
// notifications and follower listings.
type PublicUser struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Username   string             `bson:"username" json:"username"`
	FullName   string             `bson:"fullName" json:"fullName"`
	ProfileImg string             `bson:"profileImg" json:"profileImg"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}
