package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether no further decision can be taken on the request.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestAccepted || s == FriendRequestRejected
}

type FriendRequest struct {
	ID          int64               `db:"id" json:"id"`
	FromUserID  int64               `db:"from_user_id" json:"from_user_id"`
	ToUserID    int64               `db:"to_user_id" json:"to_user_id"`
	Status      FriendRequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	RespondedAt *time.Time          `db:"responded_at" json:"responded_at,omitempty"`
}

// Friendship is stored with the smaller user id first so a pair has exactly one row.
type Friendship struct {
	ID        int64     `db:"id" json:"id"`
	UserLow   int64     `db:"user_low" json:"user_low"`
	UserHigh  int64     `db:"user_high" json:"user_high"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OrderedPair returns the two ids smallest first.
func OrderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the friend of userID in this friendship.
func (f Friendship) Other(userID int64) int64 {
	if f.UserLow == userID {
		return f.UserHigh
	}
	return f.UserLow
}
