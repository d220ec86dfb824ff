package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CommunityCollection = "communities"

// Community is stored as one document per community. MemberIDs and AdminIDs
// are sets of user ids; the creator is always in both.
type Community struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	IsPrivate   bool               `bson:"isPrivate" json:"isPrivate"`
	CreatorID   string             `bson:"creatorId" json:"creatorId"`
	MemberIDs   []string           `bson:"memberIds" json:"memberIds"`
	AdminIDs    []string           `bson:"adminIds" json:"adminIds"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommunityPatch holds the fields an admin may edit.
type CommunityPatch struct {
	Name        string
	Description string
	Category    string
	IsPrivate   bool
}

func (c *Community) HasMember(userID string) bool {
	return slices.Contains(c.MemberIDs, userID)
}

func (c *Community) HasAdmin(userID string) bool {
	return slices.Contains(c.AdminIDs, userID)
}

func (c *Community) IsCreator(userID string) bool {
	return userID != "" && c.CreatorID == userID
}

// CanManage reports whether userID may edit the community or its admin set.
func (c *Community) CanManage(userID string) bool {
	return c.IsCreator(userID) || c.HasAdmin(userID)
}

// AddToSet appends v to set unless it is already present.
func AddToSet(set []string, v string) []string {
	if slices.Contains(set, v) {
		return set
	}
	return append(set, v)
}

// RemoveFromSet returns set without v.
func RemoveFromSet(set []string, v string) []string {
	return slices.DeleteFunc(slices.Clone(set), func(s string) bool { return s == v })
}

// DedupeSet drops empty and repeated ids, keeping first-seen order.
func DedupeSet(set []string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v == "" {
			continue
		}
		out = AddToSet(out, v)
	}
	return out
}
