package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Task_Mania/internal/model"
)

type FollowRepository struct {
	DB *gorm.DB
}

const (
	followOn  int8 = 1
	followOff int8 = 0
)

// Follow is idempotent. changed is true only when the relation flips from
// absent or inactive to active.
func (r *FollowRepository) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.Follow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id=? AND followee_id=?", followerID, followeeID).
			First(&rel).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rel = model.Follow{FollowerID: followerID, FolloweeID: followeeID, Status: followOn}
			if err = tx.Create(&rel).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case rel.Status == followOn:
			return nil
		default:
			if err = tx.Model(&model.Follow{}).
				Where("id=? AND status=?", rel.ID, followOff).
				Update("status", followOn).Error; err != nil {
				return err
			}
		}
		changed = true
		if err = adjustCounts(tx, followerID, followeeID, +1); err != nil {
			return err
		}
		return insertFollowEvent(tx, model.EventFollow, followerID, followeeID)
	})
	return changed, translate("follow", err)
}

func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.Follow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id=? AND followee_id=?", followerID, followeeID).
			First(&rel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if rel.Status == followOff {
			return nil
		}
		if err = tx.Model(&model.Follow{}).
			Where("id=? AND status=?", rel.ID, followOn).
			Update("status", followOff).Error; err != nil {
			return err
		}
		changed = true
		if err = adjustCounts(tx, followerID, followeeID, -1); err != nil {
			return err
		}
		return insertFollowEvent(tx, model.EventUnfollow, followerID, followeeID)
	})
	return changed, translate("unfollow", err)
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id=? AND followee_id=? AND status=?", followerID, followeeID, followOn).
		Count(&n).Error; err != nil {
		return false, translate("is following", err)
	}
	return n > 0, nil
}

// FolloweeIDs returns every user followerID currently follows. Used to build
// the post feed.
func (r *FollowRepository) FolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := make([]string, 0)
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id=? AND status=?", followerID, followOn).
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, translate("list followee ids", err)
	}
	return ids, nil
}

func (r *FollowRepository) ListFollowings(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return r.list(ctx, "follower_id", userID, cursor, limit)
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return r.list(ctx, "followee_id", userID, cursor, limit)
}

// list pages by descending id; the returned cursor is 0 on the last page.
func (r *FollowRepository) list(ctx context.Context, column, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where(column+"=? AND status=?", userID, followOn)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	rows := make([]model.Follow, 0, limit+1)
	// one extra row tells whether another page exists
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, translate("list follows", err)
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].ID
		rows = rows[:limit]
	}
	return rows, next, nil
}

func adjustCounts(tx *gorm.DB, followerID, followeeID string, delta int64) error {
	if err := tx.Model(&model.User{}).
		Where("id=?", followerID).
		UpdateColumn("following_count", gorm.Expr("GREATEST(0, following_count + ?)", delta)).Error; err != nil {
		return err
	}
	return tx.Model(&model.User{}).
		Where("id=?", followeeID).
		UpdateColumn("follower_count", gorm.Expr("GREATEST(0, follower_count + ?)", delta)).Error
}

func insertFollowEvent(tx *gorm.DB, event, follower, followee string) error {
	payload, err := json.Marshal(map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"follower":   follower,
		"followee":   followee,
	})
	if err != nil {
		return err
	}
	return tx.Create(&model.EventOutbox{
		EventType:   event,
		AggregateID: followee,
		ActorID:     follower,
		SubjectID:   followee,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}
