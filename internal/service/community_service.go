package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg/log"
)

type CommunityService struct {
	repo   CommunityRepository
	events EventSink
	now    func() time.Time
}

// NewCommunityService wires the service. events may be nil, in which case
// community events are not recorded.
func NewCommunityService(repo CommunityRepository, events EventSink) *CommunityService {
	return &CommunityService{repo: repo, events: events, now: time.Now}
}

// timestamp is truncated to the store's millisecond precision so the entity
// returned to the caller equals what a later read yields.
func (s *CommunityService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create starts the community with the creator as its only member and admin.
// Client supplied ids, owners and sets are ignored.
func (s *CommunityService) Create(ctx context.Context, c *model.Community, creatorID string) (*model.Community, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("creator required: %w", model.ErrInvalidInput)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, fmt.Errorf("community name required: %w", model.ErrInvalidInput)
	}
	now := s.timestamp()
	c.ID = primitive.NilObjectID
	c.CreatorID = creatorID
	c.MemberIDs = []string{creatorID}
	c.AdminIDs = []string{creatorID}
	c.CreatedAt = now
	c.UpdatedAt = now

	saved, err := s.repo.Save(ctx, c)
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventCommunityCreate, saved, creatorID, creatorID)
	return saved, nil
}

func (s *CommunityService) GetByID(ctx context.Context, id string) (*model.Community, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CommunityService) GetAll(ctx context.Context) ([]model.Community, error) {
	return s.repo.FindAll(ctx)
}

func (s *CommunityService) GetPublic(ctx context.Context) ([]model.Community, error) {
	return s.repo.FindPublic(ctx)
}

func (s *CommunityService) GetByCreator(ctx context.Context, creatorID string) ([]model.Community, error) {
	return s.repo.FindByCreatorID(ctx, creatorID)
}

func (s *CommunityService) GetByMember(ctx context.Context, userID string) ([]model.Community, error) {
	return s.repo.FindByMemberID(ctx, userID)
}

func (s *CommunityService) GetByAdmin(ctx context.Context, userID string) ([]model.Community, error) {
	return s.repo.FindByAdminID(ctx, userID)
}

func (s *CommunityService) GetByCategory(ctx context.Context, category string) ([]model.Community, error) {
	return s.repo.FindByCategory(ctx, category)
}

// Update replaces the editable profile fields. Only the creator or an admin
// may do so; requesterID must come from the authenticated session.
func (s *CommunityService) Update(ctx context.Context, id string, patch model.CommunityPatch, requesterID string) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanManage(requesterID) {
		return nil, fmt.Errorf("update community %s: %w", id, model.ErrUnauthorized)
	}
	patch.Name = strings.TrimSpace(patch.Name)
	if patch.Name == "" {
		return nil, fmt.Errorf("community name required: %w", model.ErrInvalidInput)
	}
	updated, err := s.repo.UpdateProfile(ctx, id, patch, s.timestamp())
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventCommunityUpdate, updated, requesterID, "")
	return updated, nil
}

// Delete removes the community document. Only the creator may delete, and
// posts that reference the community are left untouched.
func (s *CommunityService) Delete(ctx context.Context, id, requesterID string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsCreator(requesterID) {
		return fmt.Errorf("delete community %s: %w", id, model.ErrUnauthorized)
	}
	if err = s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.record(ctx, model.EventCommunityDelete, c, requesterID, "")
	return nil
}

// Join is idempotent.
func (s *CommunityService) Join(ctx context.Context, communityID, userID string) (*model.Community, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", model.ErrInvalidInput)
	}
	c, err := s.repo.AddMember(ctx, communityID, userID, s.timestamp())
	if errors.Is(err, model.ErrNoChange) {
		// already a member, or the community does not exist
		return s.repo.FindByID(ctx, communityID)
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventMemberJoined, c, userID, userID)
	return c, nil
}

// Leave drops both membership and admin rights. The creator cannot leave.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID string) (*model.Community, error) {
	c, err := s.repo.RemoveMember(ctx, communityID, userID, s.timestamp())
	if errors.Is(err, model.ErrNoChange) {
		if c, err = s.repo.FindByID(ctx, communityID); err != nil {
			return nil, err
		}
		if c.IsCreator(userID) {
			return nil, fmt.Errorf("creator cannot leave community %s: %w", communityID, model.ErrForbidden)
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventMemberLeft, c, userID, userID)
	return c, nil
}

// AddAdmin promotes an existing member. requesterID must be the creator or an
// admin.
func (s *CommunityService) AddAdmin(ctx context.Context, communityID, userID, requesterID string) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !c.CanManage(requesterID) {
		return nil, fmt.Errorf("add admin to %s: %w", communityID, model.ErrUnauthorized)
	}
	updated, err := s.repo.AddAdmin(ctx, communityID, userID, s.timestamp())
	if errors.Is(err, model.ErrNoChange) {
		if c, err = s.repo.FindByID(ctx, communityID); err != nil {
			return nil, err
		}
		if !c.HasMember(userID) {
			return nil, fmt.Errorf("user %s is not a member of %s: %w", userID, communityID, model.ErrInvalidState)
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventAdminAdded, updated, requesterID, userID)
	return updated, nil
}

// RemoveAdmin demotes an admin. The creator always stays admin.
func (s *CommunityService) RemoveAdmin(ctx context.Context, communityID, userID, requesterID string) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !c.CanManage(requesterID) {
		return nil, fmt.Errorf("remove admin from %s: %w", communityID, model.ErrUnauthorized)
	}
	if c.IsCreator(userID) {
		return nil, fmt.Errorf("creator must stay admin of %s: %w", communityID, model.ErrForbidden)
	}
	updated, err := s.repo.RemoveAdmin(ctx, communityID, userID, s.timestamp())
	if errors.Is(err, model.ErrNoChange) {
		return s.repo.FindByID(ctx, communityID)
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, model.EventAdminRemoved, updated, requesterID, userID)
	return updated, nil
}

func (s *CommunityService) IsMember(ctx context.Context, communityID, userID string) (bool, error) {
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return false, err
	}
	return c.HasMember(userID), nil
}

func (s *CommunityService) IsAdmin(ctx context.Context, communityID, userID string) (bool, error) {
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return false, err
	}
	return c.HasAdmin(userID), nil
}

func (s *CommunityService) IsCreator(ctx context.Context, communityID, userID string) (bool, error) {
	c, err := s.repo.FindByID(ctx, communityID)
	if err != nil {
		return false, err
	}
	return c.IsCreator(userID), nil
}

// record appends a community event to the outbox. Failures are logged only:
// the community write has already happened.
func (s *CommunityService) record(ctx context.Context, event string, c *model.Community, actorID, subjectID string) {
	if s.events == nil || c == nil {
		return
	}
	cid := c.ID.Hex()
	payload, err := json.Marshal(map[string]any{
		"event_time":   s.now().UTC().Format(time.RFC3339Nano),
		"community_id": cid,
		"actor":        actorID,
		"subject":      subjectID,
	})
	if err != nil {
		return
	}
	ev := &model.EventOutbox{
		EventType:   event,
		AggregateID: cid,
		ActorID:     actorID,
		SubjectID:   subjectID,
		Payload:     string(payload),
	}
	if err = s.events.Add(ctx, ev); err != nil {
		log.GetLogger(ctx).WithFields(logrus.Fields{
			"event":        event,
			"community_id": cid,
		}).WithError(err).Warn("record community event")
	}
}
