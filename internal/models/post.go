package models

import (
	"errors"
	"time"
)

type PostKind string

const (
	PostKindStandard        PostKind = "standard"
	PostKindOpenReservation PostKind = "open_reservation"
)

var ErrNoSlotsLeft = errors.New("no participant slots left")

// Post is the common shape of every community post. Variant payloads hang off
// the optional fields; a nil payload means the post does not have that capability.
type Post struct {
	ID             int64     `json:"id"`
	CommunityID    int64     `json:"community_id"`
	AuthorMemberID int64     `json:"author_member_id"`
	Kind           PostKind  `json:"kind"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PublishedAt    time.Time `json:"published_at"`

	OpenReservation *OpenReservationData `json:"open_reservation,omitempty"`
}

// OpenReservationData is the payload of a post that shares seats on a reservation.
type OpenReservationData struct {
	ReservationID       int64 `db:"reservation_id" json:"reservation_id"`
	MaxParticipants     int   `db:"max_participants" json:"max_participants"`
	CurrentParticipants int   `db:"current_participants" json:"current_participants"`
}

// SlotCapability returns the slot payload when the post exposes one.
func (p *Post) SlotCapability() (*OpenReservationData, bool) {
	if p == nil || p.OpenReservation == nil {
		return nil, false
	}
	return p.OpenReservation, true
}

func (d *OpenReservationData) HasAvailableSlots() bool {
	return d.CurrentParticipants < d.MaxParticipants
}

// IncrementParticipants raises the participant count by one. It never moves
// the count past MaxParticipants.
func (d *OpenReservationData) IncrementParticipants() error {
	if !d.HasAvailableSlots() {
		return ErrNoSlotsLeft
	}
	d.CurrentParticipants++
	return nil
}

func (d *OpenReservationData) RemainingSlots() int {
	if d.CurrentParticipants >= d.MaxParticipants {
		return 0
	}
	return d.MaxParticipants - d.CurrentParticipants
}

type PostParticipant struct {
	PostID   int64     `db:"post_id" json:"post_id"`
	MemberID int64     `db:"member_id" json:"member_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
