package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg/log"
)

type PostService struct {
	repo        PostRepository
	comments    CommentRepository
	communities CommunityRepository
	follows     FollowRepository
	likes       LikeCache
	now         func() time.Time
}

// NewPostService wires the post slice. likes may be nil.
func NewPostService(repo PostRepository, comments CommentRepository, communities CommunityRepository, follows FollowRepository, likes LikeCache) *PostService {
	return &PostService{
		repo:        repo,
		comments:    comments,
		communities: communities,
		follows:     follows,
		likes:       likes,
		now:         time.Now,
	}
}

func validatePost(title, description, category, mediaType string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return fmt.Errorf("title required: %w", model.ErrInvalidInput)
	case strings.TrimSpace(description) == "":
		return fmt.Errorf("description required: %w", model.ErrInvalidInput)
	case strings.TrimSpace(category) == "":
		return fmt.Errorf("skill category required: %w", model.ErrInvalidInput)
	}
	if mediaType != "" && mediaType != model.MediaPhoto && mediaType != model.MediaVideo {
		return fmt.Errorf("media type %q: %w", mediaType, model.ErrInvalidInput)
	}
	return nil
}

// CreatePost publishes p as userID. A post scoped to a community requires
// the author to be a member of it.
func (s *PostService) CreatePost(ctx context.Context, p *model.Post, userID string) (*model.PostView, error) {
	if err := validatePost(p.Title, p.Description, p.SkillCategory, p.MediaType); err != nil {
		return nil, err
	}
	if p.CommunityID != "" {
		c, err := s.communities.FindByID(ctx, p.CommunityID)
		if err != nil {
			return nil, err
		}
		if !c.HasMember(userID) {
			return nil, fmt.Errorf("not a member of community %s: %w", p.CommunityID, model.ErrForbidden)
		}
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	p.ID = primitive.NilObjectID
	p.UserID = userID
	p.LikedBy = []string{}
	p.MediaURLs = model.DedupeSet(p.MediaURLs)
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPostView(created, userID), nil
}

// GetPost rejects outsiders reading a post of a private community.
func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*model.PostView, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CommunityID != "" && p.UserID != viewerID {
		hidden, err := s.hiddenFrom(ctx, p.CommunityID, viewerID)
		if err != nil {
			return nil, err
		}
		if hidden {
			return nil, fmt.Errorf("post %s belongs to a private community: %w", id, model.ErrForbidden)
		}
	}
	return model.NewPostView(p, viewerID), nil
}

// hiddenFrom reports whether communityID is private and viewerID is not a
// member. Posts of a deleted community stay readable.
func (s *PostService) hiddenFrom(ctx context.Context, communityID, viewerID string) (bool, error) {
	c, err := s.communities.FindByID(ctx, communityID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.IsPrivate && !c.HasMember(viewerID), nil
}

// visibleViews drops the posts viewerID may not see and wraps the rest. Pages
// can come back shorter than requested.
func (s *PostService) visibleViews(ctx context.Context, list []model.Post, viewerID string) ([]*model.PostView, error) {
	hidden := make(map[string]bool)
	kept := list[:0]
	for _, p := range list {
		if p.CommunityID != "" && p.UserID != viewerID {
			h, seen := hidden[p.CommunityID]
			if !seen {
				var err error
				if h, err = s.hiddenFrom(ctx, p.CommunityID, viewerID); err != nil {
					return nil, err
				}
				hidden[p.CommunityID] = h
			}
			if h {
				continue
			}
		}
		kept = append(kept, p)
	}
	return toViews(kept, viewerID), nil
}

func (s *PostService) ListByUser(ctx context.Context, userID, viewerID string, page, size int) ([]*model.PostView, error) {
	list, err := s.repo.FindByUserID(ctx, userID, model.NormalizePage(page, size))
	if err != nil {
		return nil, err
	}
	return s.visibleViews(ctx, list, viewerID)
}

func (s *PostService) ListBySkillCategory(ctx context.Context, category, viewerID string, page, size int) ([]*model.PostView, error) {
	list, err := s.repo.FindBySkillCategory(ctx, category, model.NormalizePage(page, size))
	if err != nil {
		return nil, err
	}
	return s.visibleViews(ctx, list, viewerID)
}

// ListByCommunity hides posts of private communities from non-members.
func (s *PostService) ListByCommunity(ctx context.Context, communityID, viewerID string, page, size int) ([]*model.PostView, error) {
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if c.IsPrivate && !c.HasMember(viewerID) {
		return nil, fmt.Errorf("community %s is private: %w", communityID, model.ErrForbidden)
	}
	list, err := s.repo.FindByCommunityID(ctx, communityID, model.NormalizePage(page, size))
	if err != nil {
		return nil, err
	}
	return toViews(list, viewerID), nil
}

// Feed lists posts from everyone viewerID follows, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID string, page, size int) ([]*model.PostView, error) {
	ids, err := s.follows.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.FindByUserIDs(ctx, ids, model.NormalizePage(page, size))
	if err != nil {
		return nil, err
	}
	return s.visibleViews(ctx, list, viewerID)
}

func (s *PostService) UpdatePost(ctx context.Context, id string, patch model.PostPatch, userID string) (*model.PostView, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("update post %s: %w", id, model.ErrUnauthorized)
	}
	if err = validatePost(patch.Title, patch.Description, patch.SkillCategory, patch.MediaType); err != nil {
		return nil, err
	}
	p.Title = patch.Title
	p.Description = patch.Description
	p.MediaURLs = model.DedupeSet(patch.MediaURLs)
	p.MediaType = patch.MediaType
	p.SkillCategory = patch.SkillCategory
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	updated, err := s.repo.UpdateContent(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.NewPostView(updated, userID), nil
}

// DeletePost is allowed for the author and for admins of the post's
// community. Comments go with the post.
func (s *PostService) DeletePost(ctx context.Context, id, userID string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canDelete(ctx, p, userID) {
		return fmt.Errorf("delete post %s: %w", id, model.ErrUnauthorized)
	}
	if err = s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if n, err := s.comments.DeleteByPostID(ctx, id); err != nil {
		log.Warnf(ctx)("delete comments of post %s: %v", id, err)
	} else if n > 0 {
		log.Debugf(ctx)("deleted %d comments of post %s", n, id)
	}
	if s.likes != nil {
		_ = s.likes.DeleteCount(ctx, id)
	}
	return nil
}

func (s *PostService) canDelete(ctx context.Context, p *model.Post, userID string) bool {
	if userID == "" {
		return false
	}
	if p.UserID == userID {
		return true
	}
	if p.CommunityID == "" {
		return false
	}
	c, err := s.communities.FindByID(ctx, p.CommunityID)
	if err != nil {
		return false
	}
	return c.HasAdmin(userID)
}

func toViews(list []model.Post, viewerID string) []*model.PostView {
	out := make([]*model.PostView, len(list))
	for i := range list {
		out[i] = model.NewPostView(&list[i], viewerID)
	}
	return out
}
