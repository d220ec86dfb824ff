package service

import (
	"context"
	"fmt"

	"Task_Mania/internal/model"
)

type FollowService struct {
	repo  FollowRepository
	users UserRepository
}

func NewFollowService(repo FollowRepository, users UserRepository) *FollowService {
	return &FollowService{repo: repo, users: users}
}

func checkPair(followerID, followeeID string) error {
	if followerID == "" || followeeID == "" {
		return fmt.Errorf("invalid user id: %w", model.ErrInvalidInput)
	}
	if followerID == followeeID {
		return fmt.Errorf("cannot follow self: %w", model.ErrInvalidInput)
	}
	return nil
}

// Follow returns true when the relation was newly created.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if err := checkPair(followerID, followeeID); err != nil {
		return false, err
	}
	if _, err := s.users.FindByID(ctx, followeeID); err != nil {
		return false, err
	}
	return s.repo.Follow(ctx, followerID, followeeID)
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if err := checkPair(followerID, followeeID); err != nil {
		return false, err
	}
	return s.repo.Unfollow(ctx, followerID, followeeID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == "" || followeeID == "" {
		return false, fmt.Errorf("invalid user id: %w", model.ErrInvalidInput)
	}
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowService) ListFollowings(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.repo.ListFollowings(ctx, userID, cursor, limit)
}

func (s *FollowService) ListFollowers(ctx context.Context, userID string, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.repo.ListFollowers(ctx, userID, cursor, limit)
}
