package model

import "time"

type Follow struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	FollowerID string    `gorm:"size:36;not null;uniqueIndex:uk_follower_followee;index:idx_follower_id" json:"followerId"`
	FolloweeID string    `gorm:"size:36;not null;uniqueIndex:uk_follower_followee;index:idx_followee_id" json:"followeeId"`
	Status     int8      `gorm:"not null;default:1;comment:'1=follow,0=unfollow'" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Follow) TableName() string {
	return "follow"
}

// FollowCounts is the denormalized counter state of one user.
type FollowCounts struct {
	ID             string
	FollowingCount int64
	FollowerCount  int64
}
