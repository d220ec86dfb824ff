package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CommentCollection = "comments"

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    string             `bson:"postId" json:"postId"`
	UserID    string             `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
