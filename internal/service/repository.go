package service

import (
	"context"
	"time"

	"Task_Mania/internal/model"
)

// CommunityRepository is satisfied by mongo.CommunityRepository. The four
// set mutations are guarded and atomic; they return model.ErrNoChange when
// their precondition does not hold.
type CommunityRepository interface {
	FindByID(ctx context.Context, id string) (*model.Community, error)
	FindAll(ctx context.Context) ([]model.Community, error)
	FindByCreatorID(ctx context.Context, creatorID string) ([]model.Community, error)
	FindByMemberID(ctx context.Context, userID string) ([]model.Community, error)
	FindByAdminID(ctx context.Context, userID string) ([]model.Community, error)
	FindByCategory(ctx context.Context, category string) ([]model.Community, error)
	FindPublic(ctx context.Context) ([]model.Community, error)
	Save(ctx context.Context, c *model.Community) (*model.Community, error)
	UpdateProfile(ctx context.Context, id string, p model.CommunityPatch, now time.Time) (*model.Community, error)
	DeleteByID(ctx context.Context, id string) error

	AddMember(ctx context.Context, id, userID string, now time.Time) (*model.Community, error)
	RemoveMember(ctx context.Context, id, userID string, now time.Time) (*model.Community, error)
	AddAdmin(ctx context.Context, id, userID string, now time.Time) (*model.Community, error)
	RemoveAdmin(ctx context.Context, id, userID string, now time.Time) (*model.Community, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindByUserID(ctx context.Context, userID string, page model.Page) ([]model.Post, error)
	FindByUserIDs(ctx context.Context, userIDs []string, page model.Page) ([]model.Post, error)
	FindBySkillCategory(ctx context.Context, category string, page model.Page) ([]model.Post, error)
	FindByCommunityID(ctx context.Context, communityID string, page model.Page) ([]model.Post, error)
	UpdateContent(ctx context.Context, p *model.Post) (*model.Post, error)
	DeleteByID(ctx context.Context, id string) error
}

type PostLikeRepository interface {
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	FindByPostID(ctx context.Context, postID string, page model.Page) ([]model.Comment, error)
	CountByPostID(ctx context.Context, postID string) (int64, error)
	UpdateContent(ctx context.Context, id, content string, now time.Time) (*model.Comment, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByPostID(ctx context.Context, postID string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	UpsertOAuth(ctx context.Context, user *model.User) (*model.User, error)
}

type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	ListFollowings(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error)
	ListFollowers(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error)
}

// EventSink appends rows to the event outbox.
type EventSink interface {
	Add(ctx context.Context, ev *model.EventOutbox) error
}

type TokenStore interface {
	AddUserToken(ctx context.Context, userID, token string) error
	GetUserToken(ctx context.Context, userID string) (string, error)
	ExtendUserToken(ctx context.Context, userID string) error
	DeleteUserToken(ctx context.Context, userID string) error
	SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string, ttl time.Duration) error
}

type CodeStore interface {
	SavePending(ctx context.Context, scope, email, code string) error
	Confirm(ctx context.Context, scope, email string) error
	DeletePending(ctx context.Context, scope, email string) error
	Consume(ctx context.Context, scope, email, code string) error
}

type StateStore interface {
	Save(ctx context.Context, state, provider string) (bool, error)
	Consume(ctx context.Context, state string) (string, error)
}

type LikeCache interface {
	AddLike(ctx context.Context, userID, postID string) error
	RemoveLike(ctx context.Context, userID, postID string) error
	IsLikedCached(ctx context.Context, userID, postID string) (bool, bool, error)
	WarmIsLiked(ctx context.Context, userID, postID string, liked bool)
	GetLikeCountCached(ctx context.Context, postID string) (int64, bool, error)
	SetLikeCount(ctx context.Context, postID string, cnt int64) error
	DeleteCount(ctx context.Context, postID string, delay ...time.Duration) error
}

type Locker interface {
	Acquire(ctx context.Context, key, token string) (bool, error)
	Release(ctx context.Context, key, token string) error
}
