package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like is a sub-document inside a post's likes array. One entry per user,
// newest first.
type Like struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	User primitive.ObjectID `bson:"user" json:"user"`
}

// Comment is a sub-document inside a post's comments array. The author's
// name and avatar are snapshotted at creation time, like on the post itself.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	Name      string             `bson:"name" json:"name"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"createdAt" json:"date"`
}

// Post is a user's post with embedded likes and comments. Name and avatar
// are copies of the author's fields at creation time; a later profile change
// does not rewrite old posts.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	Name      string             `bson:"name" json:"name"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Likes     []Like             `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"createdAt" json:"date"`
}

// LikedBy reports whether the given user already has a like on the post.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for i := range p.Likes {
		if p.Likes[i].User == userID {
			return true
		}
	}
	return false
}

// CommentByID returns the comment with the given id. Lookup is always keyed
// by the comment's own id, never by the requester's identity.
func (p *Post) CommentByID(id primitive.ObjectID) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}
