package mysql

import (
	"context"

	"gorm.io/gorm"

	"Task_Mania/internal/model"
)

type FollowCountReconcilerRepo struct {
	DB *gorm.DB
}

// ReconcileList walks users in id order starting after lastID.
func (r *FollowCountReconcilerRepo) ReconcileList(ctx context.Context, batchSize int, lastID string) ([]model.FollowCounts, string, error) {
	var list []model.FollowCounts
	if err := r.DB.WithContext(ctx).Model(&model.User{}).
		Select("id", "following_count", "follower_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Scan(&list).Error; err != nil {
		return nil, lastID, translate("reconcile list", err)
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealFollowings counts the users userID actively follows.
func (r *FollowCountReconcilerRepo) RealFollowings(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "follower_id", userID)
}

// RealFollowers counts the users actively following userID.
func (r *FollowCountReconcilerRepo) RealFollowers(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "followee_id", userID)
}

func (r *FollowCountReconcilerRepo) count(ctx context.Context, column, userID string) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where(column+"=? AND status=?", userID, followOn).
		Count(&n).Error; err != nil {
		return 0, translate("reconcile count", err)
	}
	return n, nil
}

func (r *FollowCountReconcilerRepo) FixCounts(ctx context.Context, userID string, following, followers int64) error {
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id=?", userID).
		UpdateColumns(map[string]any{"following_count": following, "follower_count": followers}).Error
	return translate("reconcile fix", err)
}
