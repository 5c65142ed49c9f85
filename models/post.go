package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	User      *PublicUser        `bson:"-" json:"user,omitempty"` // populated in responses only
}

type Post struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Text   string             `bson:"text" json:"text"`
	Img    string             `bson:"img,omitempty" json:"img,omitempty"`

	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Bookmarks []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	Comments  []Comment            `bson:"comments" json:"comments"`

	// RepostOf points at the immediate parent, never resolved transitively.
	RepostOf *primitive.ObjectID `bson:"repostOf,omitempty" json:"repostOf,omitempty"`
	IsRepost bool                `bson:"isRepost" json:"isRepost"`

	CreatedAt int64       `bson:"createdAt" json:"createdAt"`
	User      *PublicUser `bson:"-" json:"user,omitempty"` // populated in responses only
}

func (p *Post) HasLike(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) HasBookmark(userID primitive.ObjectID) bool {
	for _, id := range p.Bookmarks {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) FindComment(commentID primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
