package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"Task_Mania/internal/model"
)

const maxCommentLen = 2000

type CommentService struct {
	repo  CommentRepository
	posts PostRepository
	users UserRepository
	now   func() time.Time
}

func NewCommentService(repo CommentRepository, posts PostRepository, users UserRepository) *CommentService {
	return &CommentService{repo: repo, posts: posts, users: users, now: time.Now}
}

func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("comment content required: %w", model.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", fmt.Errorf("comment longer than %d characters: %w", maxCommentLen, model.ErrInvalidInput)
	}
	return content, nil
}

func (s *CommentService) Create(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	if _, err = s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	name := ""
	u, err := s.users.FindByID(ctx, userID)
	switch {
	case err == nil:
		name = u.Name
		if name == "" {
			name = u.Username
		}
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	return s.repo.Create(ctx, &model.Comment{
		ID:        primitive.NilObjectID,
		PostID:    postID,
		UserID:    userID,
		UserName:  name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *CommentService) ListByPost(ctx context.Context, postID string, page, size int) ([]model.Comment, error) {
	return s.repo.FindByPostID(ctx, postID, model.NormalizePage(page, size))
}

func (s *CommentService) CountByPost(ctx context.Context, postID string) (int64, error) {
	return s.repo.CountByPostID(ctx, postID)
}

func (s *CommentService) Update(ctx context.Context, id, userID, content string) (*model.Comment, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("update comment %s: %w", id, model.ErrUnauthorized)
	}
	return s.repo.UpdateContent(ctx, id, content, s.now().UTC().Truncate(time.Millisecond))
}

// Delete is allowed for the comment author and the owner of the post.
func (s *CommentService) Delete(ctx context.Context, id, userID string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		p, err := s.posts.FindByID(ctx, c.PostID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		if p == nil || p.UserID != userID {
			return fmt.Errorf("delete comment %s: %w", id, model.ErrUnauthorized)
		}
	}
	return s.repo.DeleteByID(ctx, id)
}
