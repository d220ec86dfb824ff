package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg/log"
)

type PostLikeService struct {
	repo      PostLikeRepository
	likeCache LikeCache
	lock      Locker
	backoff   time.Duration
}

func NewPostLikeService(repo PostLikeRepository, cache LikeCache, lock Locker) *PostLikeService {
	return &PostLikeService{
		repo:      repo,
		likeCache: cache,
		lock:      lock,
		backoff:   50 * time.Millisecond,
	}
}

func validIDs(userID, postID string) error {
	if userID == "" || postID == "" {
		return fmt.Errorf("user and post id required: %w", model.ErrInvalidInput)
	}
	return nil
}

// Like writes the store first, then mirrors the change into the cache. The
// count is adjusted only when it is already cached.
func (s *PostLikeService) Like(ctx context.Context, userID, postID string) (bool, error) {
	if err := validIDs(userID, postID); err != nil {
		return false, err
	}
	changed, err := s.repo.AddLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if !changed {
		s.likeCache.WarmIsLiked(ctx, userID, postID, true)
		return false, nil
	}
	if err = s.likeCache.AddLike(ctx, userID, postID); err != nil {
		// a stale count is worse than a missing one
		log.Warnf(ctx)("like cache for post %s: %v", postID, err)
		_ = s.likeCache.DeleteCount(ctx, postID)
	}
	return true, nil
}

func (s *PostLikeService) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	if err := validIDs(userID, postID); err != nil {
		return false, err
	}
	changed, err := s.repo.RemoveLike(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if !changed {
		s.likeCache.WarmIsLiked(ctx, userID, postID, false)
		return false, nil
	}
	if err = s.likeCache.RemoveLike(ctx, userID, postID); err != nil {
		log.Warnf(ctx)("like cache for post %s: %v", postID, err)
		_ = s.likeCache.DeleteCount(ctx, postID)
	}
	return true, nil
}

func (s *PostLikeService) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	if err := validIDs(userID, postID); err != nil {
		return false, err
	}
	if b, ok, err := s.likeCache.IsLikedCached(ctx, userID, postID); err == nil && ok {
		return b, nil
	}
	b, err := s.repo.IsLiked(ctx, postID, userID)
	if err == nil {
		s.likeCache.WarmIsLiked(ctx, userID, postID, b)
	}
	return b, err
}

// GetCountWithLock serves the like count from cache. On a miss one caller
// rebuilds it under the lock while the others back off once and retry.
func (s *PostLikeService) GetCountWithLock(ctx context.Context, postID string) (int64, error) {
	if postID == "" {
		return 0, fmt.Errorf("post id required: %w", model.ErrInvalidInput)
	}
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, postID, token)
	if got {
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), postID, token); err != nil {
				log.Warnf(ctx)("release like lock for post %s: %v", postID, err)
			}
		}()
		if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
			return v, nil
		}
		v, err := s.repo.CountLikes(ctx, postID)
		if err != nil {
			return 0, err
		}
		_ = s.likeCache.SetLikeCount(ctx, postID, v)
		return v, nil
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(s.backoff):
	}
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	return s.repo.CountLikes(ctx, postID)
}
