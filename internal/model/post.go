package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PostCollection = "posts"

const (
	MediaPhoto = "PHOTO"
	MediaVideo = "VIDEO"
)

type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userId" json:"userId"`
	CommunityID   string             `bson:"communityId,omitempty" json:"communityId,omitempty"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	MediaURLs     []string           `bson:"mediaUrls" json:"mediaUrls"`
	MediaType     string             `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
	LikedBy       []string           `bson:"likedBy" json:"-"`
	SkillCategory string             `bson:"skillCategory" json:"skillCategory"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PostView is what clients receive: the post plus like state for the viewer.
type PostView struct {
	*Post
	LikesCount int  `json:"likesCount"`
	UserLiked  bool `json:"userLiked"`
}

func NewPostView(p *Post, viewerID string) *PostView {
	liked := false
	for _, id := range p.LikedBy {
		if id == viewerID && viewerID != "" {
			liked = true
			break
		}
	}
	return &PostView{Post: p, LikesCount: len(p.LikedBy), UserLiked: liked}
}

// PostPatch is what an author may change after publishing.
type PostPatch struct {
	Title         string
	Description   string
	MediaURLs     []string
	MediaType     string
	SkillCategory string
}
