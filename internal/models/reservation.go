package models

import "time"

type ReservationStatus string

const (
	ReservationRequested ReservationStatus = "requested"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationRequested: {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled},
}

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(s); st {
	case ReservationRequested, ReservationConfirmed, ReservationCompleted, ReservationCancelled:
		return st, true
	}
	return "", false
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses directly reachable from s.
func (s ReservationStatus) NextStatuses() []ReservationStatus {
	next := make([]ReservationStatus, len(reservationTransitions[s]))
	copy(next, reservationTransitions[s])
	return next
}

type Reservation struct {
	ID           int64             `db:"id" json:"id"`
	CustomerID   int64             `db:"customer_id" json:"customer_id"`
	RestaurantID int64             `db:"restaurant_id" json:"restaurant_id"`
	TableRef     string            `db:"table_ref" json:"table_ref"`
	PartySize    int               `db:"party_size" json:"party_size"`
	ScheduledAt  time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Status       ReservationStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}
