// Package events defines the domain events emitted after successful mutations
// and the publisher contract shared by the RabbitMQ and Kafka backends.
package events

import (
	"context"
	"log"
	"time"
)

// Routing keys for domain events.
const (
	FriendRequestCreated     = "friend.request.created"
	FriendshipCreated        = "friendship.created"
	FriendRequestRejected    = "friend.request.rejected"
	FriendshipRemoved        = "friendship.removed"
	CommunityCreated         = "community.created"
	CommunityMemberJoined    = "community.member.joined"
	PostPublished            = "post.published"
	PostParticipantJoined    = "post.participant.joined"
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status.changed"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type FriendRequestPayload struct {
	RequestID  int64     `json:"request_id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type FriendshipPayload struct {
	UserID     int64     `json:"user_id"`
	FriendID   int64     `json:"friend_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type CommunityPayload struct {
	CommunityID int64     `json:"community_id"`
	MemberID    int64     `json:"member_id"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type PostPayload struct {
	PostID        int64     `json:"post_id"`
	CommunityID   int64     `json:"community_id"`
	Kind          string    `json:"kind"`
	ReservationID *int64    `json:"reservation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ParticipantJoinedPayload struct {
	PostID              int64     `json:"post_id"`
	MemberID            int64     `json:"member_id"`
	CurrentParticipants int       `json:"current_participants"`
	MaxParticipants     int       `json:"max_participants"`
	OccurredAt          time.Time `json:"occurred_at"`
}

type ReservationStatusPayload struct {
	ReservationID int64     `json:"reservation_id"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to"`
	ActorUserID   int64     `json:"actor_user_id"`
	ActorRole     string    `json:"actor_role"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type noopPublisher struct {
	reason string
}

// NewNoopPublisher returns a publisher that drops events and logs why.
func NewNoopPublisher(reason string) Publisher { return &noopPublisher{reason: reason} }

func (n *noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	log.Printf("warning: %s; skipping publish for routing key %s", n.reason, routingKey)
	return nil
}

func (n *noopPublisher) Close() error { return nil }
