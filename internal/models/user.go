// Package models defines the document types stored in MongoDB and the
// error types shared by the API layer.
package models

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an identity record. It is created on registration and referenced
// by id from profiles and posts. The password hash is never serialized.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"createdAt" json:"date"`
}

// GravatarURL derives a stable avatar URL from an email address. The avatar
// is captured on the user record at registration and snapshotted onto posts
// and comments, so later email changes do not rewrite history.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=200&r=pg&d=mm", sum)
}
