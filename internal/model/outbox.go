package model

import "time"

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

const (
	EventFollow          = "follow"
	EventUnfollow        = "unfollow"
	EventCommunityCreate = "community.created"
	EventCommunityUpdate = "community.updated"
	EventCommunityDelete = "community.deleted"
	EventMemberJoined    = "community.member_joined"
	EventMemberLeft      = "community.member_left"
	EventAdminAdded      = "community.admin_added"
	EventAdminRemoved    = "community.admin_removed"
)

// EventOutbox rows are relayed to Kafka by the outbox relayer. They double as
// the audit trail of follow and community membership changes.
type EventOutbox struct {
	ID          uint64    `gorm:"primaryKey"`
	EventType   string    `gorm:"size:32;not null;index"`
	AggregateID string    `gorm:"size:64;not null;index"`
	ActorID     string    `gorm:"size:36;not null"`
	SubjectID   string    `gorm:"size:64"`
	Payload     string    `gorm:"type:json;not null"`
	Status      int8      `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EventOutbox) TableName() string { return "event_outbox" }
