package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SourceLocal  = "LOCAL"
	SourceGoogle = "GOOGLE"
)

type User struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	Username           string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Password           string    `gorm:"size:255;not null;default:''" json:"-"`
	Role               int       `gorm:"default:0" json:"role"`
	Email              string    `gorm:"uniqueIndex;size:64;not null" json:"email"`
	Name               string    `gorm:"size:64" json:"name"`
	ProfileImage       string    `gorm:"size:512" json:"profileImage"`
	RegistrationSource string    `gorm:"size:16;not null;default:'LOCAL'" json:"registrationSource"`
	Skills             []string  `gorm:"serializer:json;type:json" json:"skills"`
	FollowerCount      int64     `gorm:"not null;default:0" json:"followerCount"`
	FollowingCount     int64     `gorm:"not null;default:0" json:"followingCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
