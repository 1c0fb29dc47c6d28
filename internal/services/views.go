package services

import (
	"time"

	"social-service/internal/models"
)

// JoinedPostView is the slot summary of an open-reservation post.
type JoinedPostView struct {
	PostID              int64 `json:"post_id"`
	CurrentParticipants int   `json:"current_participants"`
	MaxParticipants     int   `json:"max_participants"`
	RemainingSlots      int   `json:"remaining_slots"`
}

func newJoinedPostView(postID int64, slots *models.OpenReservationData) *JoinedPostView {
	return &JoinedPostView{
		PostID:              postID,
		CurrentParticipants: slots.CurrentParticipants,
		MaxParticipants:     slots.MaxParticipants,
		RemainingSlots:      slots.RemainingSlots(),
	}
}

type PostView struct {
	*models.Post
	Slots *JoinedPostView `json:"slots,omitempty"`
}

type ReservationView struct {
	ID           int64                      `json:"id"`
	CustomerID   int64                      `json:"customer_id"`
	RestaurantID int64                      `json:"restaurant_id"`
	TableRef     string                     `json:"table_ref"`
	PartySize    int                        `json:"party_size"`
	ScheduledAt  time.Time                  `json:"scheduled_at"`
	Status       models.ReservationStatus   `json:"status"`
	Terminal     bool                       `json:"terminal"`
	Next         []models.ReservationStatus `json:"next_statuses"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

func newReservationView(r *models.Reservation) *ReservationView {
	return &ReservationView{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		RestaurantID: r.RestaurantID,
		TableRef:     r.TableRef,
		PartySize:    r.PartySize,
		ScheduledAt:  r.ScheduledAt,
		Status:       r.Status,
		Terminal:     r.Status.IsTerminal(),
		Next:         r.Status.NextStatuses(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
